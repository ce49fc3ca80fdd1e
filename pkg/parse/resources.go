package parse

// Time fields used as pagination cutoffs.
const (
	VideoPublishDate        = "video_publish_date"
	PlaylistItemPublishDate = "publish_date"
	CommentPublishDate      = "comment_publish_date"
)

// VideoSchema covers videos.list items.
var VideoSchema = Schema{
	Name: "video",
	Fields: []FieldSpec{
		Spec("video_id", KindString, "id"),
		Spec("channel_title", KindString, "snippet.channelTitle"),
		Spec("channel_id", KindString, "snippet.channelId"),
		Spec(VideoPublishDate, KindTime, "snippet.publishedAt"),
		Spec("video_title", KindString, "snippet.title"),
		Spec("video_description", KindString, "snippet.description"),
		Spec("video_category", KindString, "snippet.categoryId"),
		Spec("video_view_count", KindInt, "statistics.viewCount"),
		Spec("video_comment_count", KindInt, "statistics.commentCount"),
		Spec("video_like_count", KindInt, "statistics.likeCount"),
		Spec("video_dislike_count", KindInt, "statistics.dislikeCount"),
		Spec("video_thumbnail", KindString, "snippet.thumbnails.high.url"),
		Spec("video_tags", KindJoined, "snippet.tags"),
	},
}

// PlaylistItemSchema covers playlistItems.list items.
var PlaylistItemSchema = Schema{
	Name: "playlist_item",
	Fields: []FieldSpec{
		Spec("video_id", KindString, "snippet.resourceId.videoId", "contentDetails.videoId"),
		Spec("channel_id", KindString, "snippet.channelId"),
		Spec(PlaylistItemPublishDate, KindTime, "snippet.publishedAt"),
	},
}

// ChannelSchema covers channels.list items.
var ChannelSchema = Schema{
	Name: "channel",
	Fields: []FieldSpec{
		Spec("channel_id", KindString, "id"),
		Spec("title", KindString, "snippet.title"),
		Spec("account_creation_date", KindTime, "snippet.publishedAt"),
		Spec("description", KindString, "snippet.description"),
		Spec("country", KindString, "snippet.country"),
		Spec("keywords", KindString, "brandingSettings.channel.keywords"),
		Spec("view_count", KindInt, "statistics.viewCount"),
		Spec("video_count", KindInt, "statistics.videoCount"),
		Spec("subscription_count", KindInt, "statistics.subscriberCount"),
		Spec("playlist_id_likes", KindString, "contentDetails.relatedPlaylists.likes"),
		Spec("playlist_id_uploads", KindString, "contentDetails.relatedPlaylists.uploads"),
		Spec("topic_ids", KindJoined, "topicDetails.topicCategories"),
	},
}

// PlaylistSchema covers playlists.list items.
var PlaylistSchema = Schema{
	Name: "playlist",
	Fields: []FieldSpec{
		Spec("playlist_name", KindString, "snippet.title"),
		Spec("playlist_id", KindString, "id"),
		Spec("playlist_publish_date", KindTime, "snippet.publishedAt"),
		Spec("playlist_n_videos", KindInt, "contentDetails.itemCount"),
		Spec("channel_id", KindString, "snippet.channelId"),
		Spec("channel_name", KindString, "snippet.channelTitle"),
	},
}

// SubscriptionSchema covers subscriptions.list items.
var SubscriptionSchema = Schema{
	Name: "subscription",
	Fields: []FieldSpec{
		Spec("subscription_title", KindString, "snippet.title"),
		Spec("subscription_channel_id", KindString, "snippet.resourceId.channelId"),
		Spec("subscription_kind", KindString, "snippet.resourceId.kind"),
		Spec("subscription_publish_date", KindTime, "snippet.publishedAt"),
	},
}

// CommentSchema covers both commentThreads.list items (unwrapping the top
// level comment) and comments.list replies.
var CommentSchema = Schema{
	Name: "comment",
	Fields: []FieldSpec{
		Spec("video_id", KindString, "snippet.topLevelComment.snippet.videoId", "snippet.videoId"),
		Spec("commenter_channel_url", KindString, "snippet.topLevelComment.snippet.authorChannelUrl", "snippet.authorChannelUrl"),
		Spec("commenter_channel_display_name", KindString, "snippet.topLevelComment.snippet.authorDisplayName", "snippet.authorDisplayName"),
		Spec("commenter_channel_id", KindString, "snippet.topLevelComment.snippet.authorChannelId.value", "snippet.authorChannelId.value"),
		Spec("comment_id", KindString, "snippet.topLevelComment.id", "id"),
		Spec("comment_like_count", KindInt, "snippet.topLevelComment.snippet.likeCount", "snippet.likeCount"),
		Spec(CommentPublishDate, KindTime, "snippet.topLevelComment.snippet.publishedAt", "snippet.publishedAt"),
		Spec("text", KindString, "snippet.topLevelComment.snippet.textDisplay", "snippet.textDisplay"),
		Spec("commenter_rating", KindString, "snippet.topLevelComment.snippet.viewerRating", "snippet.viewerRating"),
		Spec("comment_parent_id", KindString, "snippet.topLevelComment.snippet.parentId", "snippet.parentId"),
		Spec("reply_count", KindInt, "snippet.totalReplyCount", "totalReplyCount"),
	},
}

// SearchResultSchema covers search.list items.
var SearchResultSchema = Schema{
	Name: "search_result",
	Fields: []FieldSpec{
		Spec("result_kind", KindString, "id.kind"),
		Spec("video_id", KindString, "id.videoId"),
		Spec("playlist_id", KindString, "id.playlistId"),
		Spec("channel_title", KindString, "snippet.channelTitle"),
		Spec("channel_id", KindString, "id.channelId", "snippet.channelId"),
		Spec(VideoPublishDate, KindTime, "snippet.publishedAt"),
		Spec("video_title", KindString, "snippet.title"),
		Spec("video_description", KindString, "snippet.description"),
		Spec("video_category", KindString, "snippet.categoryId"),
		Spec("video_thumbnail", KindString, "snippet.thumbnails.high.url"),
	},
}

// FeaturedChannelsSchema covers the featured channel list of channels.list.
var FeaturedChannelsSchema = Schema{
	Name: "featured_channels",
	Fields: []FieldSpec{
		Spec("channel_id", KindString, "id"),
		Spec("featured_channels", KindJoined, "brandingSettings.channel.featuredChannelsUrls"),
	},
}

// Video returns the video metadata normalizer.
func Video(clock Clock) Normalizer { return VideoSchema.Normalizer(clock) }

// PlaylistItem returns the playlist item normalizer.
func PlaylistItem(clock Clock) Normalizer { return PlaylistItemSchema.Normalizer(clock) }

// Channel returns the channel metadata normalizer.
func Channel(clock Clock) Normalizer { return ChannelSchema.Normalizer(clock) }

// Playlist returns the playlist metadata normalizer.
func Playlist(clock Clock) Normalizer { return PlaylistSchema.Normalizer(clock) }

// Subscription returns the subscription normalizer.
func Subscription(clock Clock) Normalizer { return SubscriptionSchema.Normalizer(clock) }

// Comment returns the comment normalizer.
func Comment(clock Clock) Normalizer { return CommentSchema.Normalizer(clock) }

// SearchResult returns the search result normalizer.
func SearchResult(clock Clock) Normalizer { return SearchResultSchema.Normalizer(clock) }

// FeaturedChannels returns the featured channels normalizer.
func FeaturedChannels(clock Clock) Normalizer { return FeaturedChannelsSchema.Normalizer(clock) }
