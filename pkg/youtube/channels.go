package youtube

import (
	"context"
	"fmt"

	"github.com/Sternrassler/ytdata-client/pkg/pagination"
	"github.com/Sternrassler/ytdata-client/pkg/parse"
)

var channelParts = []string{"id", "snippet", "contentDetails", "statistics", "topicDetails", "brandingSettings"}

// ChannelMetadataStream streams metadata for the given channels, in input order.
func (s *Service) ChannelMetadataStream(ctx context.Context, ids Identifier, opts ...Option) *pagination.Stream {
	o := collectOptions(opts)
	desc := pagination.Descriptor{
		Name:      "channels",
		Path:      "channels",
		Params:    baseParams(o, channelParts, nil),
		IDParam:   "id",
		BatchSize: pagination.DefaultBatchSize,
	}
	return s.batch(ctx, desc, ids, o.normalizerOr(parse.Channel(s.clock)), o.condition(desc, 0))
}

// ChannelMetadata returns metadata for the given channels.
func (s *Service) ChannelMetadata(ctx context.Context, ids Identifier, opts ...Option) ([]parse.Record, error) {
	recs, err := pagination.Collect(s.ChannelMetadataStream(ctx, ids, opts...))
	if err != nil {
		return recs, fmt.Errorf("channel metadata: %w", err)
	}
	return recs, nil
}

// Channel returns metadata for one channel, or an error matching
// client.ErrNotFound.
func (s *Service) Channel(ctx context.Context, id string, opts ...Option) (parse.Record, error) {
	single := Single(id)
	if single.Empty() {
		return nil, fmt.Errorf("%w: channel id is required", ErrInvalidArgument)
	}
	return s.one(s.ChannelMetadataStream(ctx, single, opts...), "channel", id)
}

// FeaturedChannelsStream streams the featured channel URLs of the given
// channels, one record per channel.
func (s *Service) FeaturedChannelsStream(ctx context.Context, ids Identifier, opts ...Option) *pagination.Stream {
	o := collectOptions(opts)
	desc := pagination.Descriptor{
		Name:      "featured_channels",
		Path:      "channels",
		Params:    baseParams(o, []string{"id", "brandingSettings"}, nil),
		IDParam:   "id",
		BatchSize: pagination.DefaultBatchSize,
	}
	return s.batch(ctx, desc, ids, o.normalizerOr(parse.FeaturedChannels(s.clock)), o.condition(desc, 0))
}

// FeaturedChannels returns the featured channel URLs of the given channels.
func (s *Service) FeaturedChannels(ctx context.Context, ids Identifier, opts ...Option) ([]parse.Record, error) {
	recs, err := pagination.Collect(s.FeaturedChannelsStream(ctx, ids, opts...))
	if err != nil {
		return recs, fmt.Errorf("featured channels: %w", err)
	}
	return recs, nil
}

// SubscriptionsStream streams the public subscriptions of a channel.
func (s *Service) SubscriptionsStream(ctx context.Context, channelID string, opts ...Option) *pagination.Stream {
	if err := requireID("channel", channelID); err != nil {
		return pagination.Failed(err)
	}
	o := collectOptions(opts)
	desc := pagination.Descriptor{
		Name:     "subscriptions",
		Path:     "subscriptions",
		Params:   baseParams(o, []string{"id", "snippet"}, map[string]string{"channelId": channelID}),
		PageSize: pageSize(50, o.limit(0)),
	}
	return s.paginator.Paginate(ctx, desc, o.normalizerOr(parse.Subscription(s.clock)), o.condition(desc, 0), o.paginateOptions()...)
}

// Subscriptions returns the public subscriptions of a channel.
func (s *Service) Subscriptions(ctx context.Context, channelID string, opts ...Option) ([]parse.Record, error) {
	if err := requireID("channel", channelID); err != nil {
		return nil, err
	}
	recs, err := pagination.Collect(s.SubscriptionsStream(ctx, channelID, opts...))
	if err != nil {
		return recs, fmt.Errorf("subscriptions of %s: %w", channelID, err)
	}
	return recs, nil
}
