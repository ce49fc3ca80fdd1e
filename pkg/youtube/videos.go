package youtube

import (
	"context"
	"fmt"

	"github.com/Sternrassler/ytdata-client/pkg/pagination"
	"github.com/Sternrassler/ytdata-client/pkg/parse"
)

var videoParts = []string{"statistics", "snippet"}

// videoDescriptor has no TimeField: batch results follow the input ids, not
// publish time, so a cutoff would drop arbitrary videos.
func (s *Service) videoDescriptor(o callOptions) pagination.Descriptor {
	return pagination.Descriptor{
		Name:      "videos",
		Path:      "videos",
		Params:    baseParams(o, videoParts, nil),
		IDParam:   "id",
		BatchSize: pagination.DefaultBatchSize,
	}
}

// VideoMetadataStream streams metadata for the given videos, in input order.
// Unknown ids yield no record. WithCutoff has no effect here.
func (s *Service) VideoMetadataStream(ctx context.Context, ids Identifier, opts ...Option) *pagination.Stream {
	o := collectOptions(opts)
	desc := s.videoDescriptor(o)
	return s.batch(ctx, desc, ids, o.normalizerOr(parse.Video(s.clock)), o.condition(desc, 0))
}

// VideoMetadata returns metadata for the given videos.
func (s *Service) VideoMetadata(ctx context.Context, ids Identifier, opts ...Option) ([]parse.Record, error) {
	recs, err := pagination.Collect(s.VideoMetadataStream(ctx, ids, opts...))
	if err != nil {
		return recs, fmt.Errorf("video metadata: %w", err)
	}
	return recs, nil
}

// Video returns metadata for one video, or an error matching
// client.ErrNotFound when the video does not exist.
func (s *Service) Video(ctx context.Context, id string, opts ...Option) (parse.Record, error) {
	single := Single(id)
	if single.Empty() {
		return nil, fmt.Errorf("%w: video id is required", ErrInvalidArgument)
	}
	return s.one(s.VideoMetadataStream(ctx, single, opts...), "video", id)
}
