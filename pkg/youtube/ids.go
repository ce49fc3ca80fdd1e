package youtube

import (
	"fmt"
	"net/url"
	"strings"
)

// VideoURL returns the watch URL of a video.
func VideoURL(videoID string) string {
	return "https://youtube.com/watch?v=" + url.QueryEscape(videoID)
}

// StripVideoID extracts the video id from a watch or youtu.be URL.
func StripVideoID(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case host == "youtu.be":
		id := strings.Trim(u.Path, "/")
		if i := strings.LastIndex(id, "/"); i >= 0 {
			id = id[i+1:]
		}
		return id, id != ""
	case strings.HasSuffix(host, "youtube.com") && strings.EqualFold(u.Path, "/watch"):
		id := u.Query().Get("v")
		return id, id != ""
	default:
		return "", false
	}
}

// UploadPlaylistID returns the uploads playlist of a channel ("UC..." -> "UU...").
func UploadPlaylistID(channelID string) string {
	return swapPrefix(channelID, "UU")
}

// LikedPlaylistID returns the liked videos playlist of a channel ("UC..." -> "LL...").
func LikedPlaylistID(channelID string) string {
	return swapPrefix(channelID, "LL")
}

func swapPrefix(channelID, prefix string) string {
	if len(channelID) < 2 {
		return prefix
	}
	return prefix + channelID[2:]
}

// IsUserURL reports whether a channel URL is a legacy /user/ URL (true) or a
// /channel/ URL (false). Other URLs are an error.
func IsUserURL(channelURL string) (bool, error) {
	switch {
	case strings.Contains(channelURL, "youtube.com/user/"):
		return true, nil
	case strings.Contains(channelURL, "youtube.com/channel/"):
		return false, nil
	default:
		return false, fmt.Errorf("%w: unrecognized channel url %q", ErrInvalidArgument, channelURL)
	}
}

// StripChannelID returns the last path element of a channel or user URL,
// ignoring a trailing /featured.
func StripChannelID(channelURL string) string {
	s := strings.TrimRight(channelURL, "/")
	s = strings.TrimSuffix(s, "/featured")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}
