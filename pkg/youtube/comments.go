package youtube

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Sternrassler/ytdata-client/pkg/pagination"
	"github.com/Sternrassler/ytdata-client/pkg/parse"
)

// commentPageSize is the maxResults limit of the comment endpoints.
const commentPageSize = 100

// CommentThreadsStream streams the top-level comments of a video.
func (s *Service) CommentThreadsStream(ctx context.Context, videoID string, opts ...Option) *pagination.Stream {
	if err := requireID("video", videoID); err != nil {
		return pagination.Failed(err)
	}
	o := collectOptions(opts)
	desc := pagination.Descriptor{
		Name: "comment_threads",
		Path: "commentThreads",
		Params: baseParams(o, []string{"snippet"}, map[string]string{
			"videoId":    videoID,
			"textFormat": "plainText",
		}),
		PageSize:  pageSize(commentPageSize, o.limit(0)),
		TimeField: parse.CommentPublishDate,
	}
	return s.paginator.Paginate(ctx, desc, o.normalizerOr(parse.Comment(s.clock)), o.condition(desc, 0), o.paginateOptions()...)
}

// CommentRepliesStream streams the replies to one top-level comment.
func (s *Service) CommentRepliesStream(ctx context.Context, parentID string, opts ...Option) *pagination.Stream {
	if err := requireID("comment", parentID); err != nil {
		return pagination.Failed(err)
	}
	o := collectOptions(opts)
	desc := pagination.Descriptor{
		Name: "comment_replies",
		Path: "comments",
		Params: baseParams(o, []string{"snippet"}, map[string]string{
			"parentId":   parentID,
			"textFormat": "plainText",
		}),
		PageSize:  pageSize(commentPageSize, o.limit(0)),
		TimeField: parse.CommentPublishDate,
	}
	return s.paginator.Paginate(ctx, desc, o.normalizerOr(parse.Comment(s.clock)), o.condition(desc, 0), o.paginateOptions()...)
}

// VideoComments returns the top-level comments of a video and, with
// withReplies, the replies of every comment whose reply_count is positive.
// Replies follow all top-level comments. WithMaxResults caps the combined
// count. WithCutoff and WithStartCursor apply to the top-level comments only.
func (s *Service) VideoComments(ctx context.Context, videoID string, withReplies bool, opts ...Option) ([]parse.Record, error) {
	if err := requireID("video", videoID); err != nil {
		return nil, err
	}

	out, err := pagination.Collect(s.CommentThreadsStream(ctx, videoID, opts...))
	if err != nil {
		return out, fmt.Errorf("comments of video %s: %w", videoID, err)
	}
	if !withReplies {
		return out, nil
	}

	limit := collectOptions(opts).limit(0)
	threads := len(out)
	for i := 0; i < threads; i++ {
		if limit > 0 && len(out) >= limit {
			break
		}

		top := out[i]
		if n, ok := top.Int("reply_count"); !ok || n <= 0 {
			continue
		}

		remaining := 0
		if limit > 0 {
			remaining = limit - len(out)
		}
		replyOpts := append(slices.Clone(opts),
			WithMaxResults(remaining),
			WithCutoff(time.Time{}),
			WithStartCursor(""),
		)

		parentID := top.String("comment_id")
		replies, err := pagination.Collect(s.CommentRepliesStream(ctx, parentID, replyOpts...))
		out = append(out, replies...)
		if err != nil {
			return out, fmt.Errorf("replies to comment %s: %w", parentID, err)
		}
	}
	return out, nil
}
