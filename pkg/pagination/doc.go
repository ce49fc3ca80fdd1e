// Package pagination implements the traversal engine for cursor-paginated
// Data API endpoints.
//
// A traversal is a pull-based Stream: every call to Next either yields the
// next normalized record, or ends the stream in one of three ways (stopped by
// a condition, exhausted, or failed). Pages are fetched one at a time and only
// when the previous page has been consumed, so abandoning a stream never
// leaves a request in flight and never issues another one.
//
// Example usage:
//
//	p := pagination.New(apiClient, pagination.DefaultConfig())
//	desc := pagination.Descriptor{
//		Name:      "playlist_items",
//		Path:      "playlistItems",
//		Params:    url.Values{"part": {"snippet"}, "playlistId": {playlistID}},
//		PageSize:  50,
//		TimeField: parse.PlaylistItemPublishDate,
//	}
//	stream := p.Paginate(ctx, desc, parse.PlaylistItem(nil),
//		pagination.All(pagination.MaxResults(500), desc.CutoffAt(since)))
//	for stream.Next() {
//		rec := stream.Record()
//		...
//	}
//	if err := stream.Err(); err != nil {
//		...
//	}
//
// A stream capped by MaxResults may stop inside a page. Position records the
// page token together with the number of its records already yielded, and
// WithStartPosition picks up from there without gaps or repeats:
//
//	if pos, ok := stream.Position(); ok {
//		next := p.Paginate(ctx, desc, normalizer, nil, pagination.WithStartPosition(pos))
//		...
//	}
//
// Batch fetches (many ids per request, one request per chunk of ids) use the
// same Stream type via Paginator.Batch.
//
// Cutoff conditions assume the API returns items newest first. If it does
// not, the cutoff ends the traversal at the first old item it sees and later
// newer items are never read.
package pagination
