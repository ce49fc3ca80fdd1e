package youtube

import (
	"context"
	"fmt"

	"github.com/Sternrassler/ytdata-client/pkg/pagination"
	"github.com/Sternrassler/ytdata-client/pkg/parse"
)

// PlaylistsStream streams the playlists of a channel.
func (s *Service) PlaylistsStream(ctx context.Context, channelID string, opts ...Option) *pagination.Stream {
	if err := requireID("channel", channelID); err != nil {
		return pagination.Failed(err)
	}
	o := collectOptions(opts)
	desc := pagination.Descriptor{
		Name:      "playlists",
		Path:      "playlists",
		Params:    baseParams(o, []string{"id", "snippet", "contentDetails"}, map[string]string{"channelId": channelID}),
		PageSize:  pageSize(50, o.limit(0)),
		TimeField: "playlist_publish_date",
	}
	return s.paginator.Paginate(ctx, desc, o.normalizerOr(parse.Playlist(s.clock)), o.condition(desc, 0), o.paginateOptions()...)
}

// Playlists returns the playlists of a channel.
func (s *Service) Playlists(ctx context.Context, channelID string, opts ...Option) ([]parse.Record, error) {
	if err := requireID("channel", channelID); err != nil {
		return nil, err
	}
	recs, err := pagination.Collect(s.PlaylistsStream(ctx, channelID, opts...))
	if err != nil {
		return recs, fmt.Errorf("playlists of %s: %w", channelID, err)
	}
	return recs, nil
}

// PlaylistVideosStream streams the items of a playlist. With WithCutoff the
// stream stops at the first item published at or before the cutoff, which
// suits upload playlists (newest first).
func (s *Service) PlaylistVideosStream(ctx context.Context, playlistID string, opts ...Option) *pagination.Stream {
	if err := requireID("playlist", playlistID); err != nil {
		return pagination.Failed(err)
	}
	o := collectOptions(opts)
	desc := pagination.Descriptor{
		Name:      "playlist_items",
		Path:      "playlistItems",
		Params:    baseParams(o, []string{"snippet"}, map[string]string{"playlistId": playlistID}),
		PageSize:  pageSize(50, o.limit(0)),
		TimeField: parse.PlaylistItemPublishDate,
	}
	return s.paginator.Paginate(ctx, desc, o.normalizerOr(parse.PlaylistItem(s.clock)), o.condition(desc, 0), o.paginateOptions()...)
}

// PlaylistVideos returns the items of a playlist.
func (s *Service) PlaylistVideos(ctx context.Context, playlistID string, opts ...Option) ([]parse.Record, error) {
	if err := requireID("playlist", playlistID); err != nil {
		return nil, err
	}
	recs, err := pagination.Collect(s.PlaylistVideosStream(ctx, playlistID, opts...))
	if err != nil {
		return recs, fmt.Errorf("videos of playlist %s: %w", playlistID, err)
	}
	return recs, nil
}
