package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Sternrassler/ytdata-client/internal/config"
	"github.com/Sternrassler/ytdata-client/pkg/pagination"
	"github.com/Sternrassler/ytdata-client/pkg/parse"
	"github.com/Sternrassler/ytdata-client/pkg/youtube"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configFile  string
	metricsAddr string
	logLevel    string
}

// cli is the command tree plus the app its commands share.
type cli struct {
	root  *cobra.Command
	flags rootFlags
	app   *app
}

// newCLI builds the command tree. Records are written to out.
func newCLI(out io.Writer) *cli {
	c := &cli{}

	c.root = &cobra.Command{
		Use:           "ytdata",
		Short:         "Retrieve YouTube Data API resources as JSON lines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.flags.configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if c.flags.metricsAddr != "" {
				cfg.MetricsAddr = c.flags.metricsAddr
			}
			if c.flags.logLevel != "" {
				cfg.Log.Level = c.flags.logLevel
			}

			c.app, err = newApp(cmd.Context(), cfg, out)
			return err
		},
	}

	pf := c.root.PersistentFlags()
	pf.StringVarP(&c.flags.configFile, "config", "c", "", "config file path (default ./config.yaml)")
	pf.StringVar(&c.flags.metricsAddr, "metrics-addr", "", "serve /metrics and /health on this address")
	pf.StringVar(&c.flags.logLevel, "log-level", "", "debug, info, warn or error")

	current := func() *app { return c.app }
	c.root.AddCommand(
		newVideosCommand(current),
		newChannelsCommand(current),
		newFeaturedCommand(current),
		newChannelIDCommand(current),
		newPlaylistsCommand(current),
		newPlaylistVideosCommand(current),
		newUploadsCommand(current),
		newSubscriptionsCommand(current),
		newCommentsCommand(current),
		newSearchCommand(current),
	)
	return c
}

// Execute runs the command selected by args and releases the app afterwards,
// whether or not the command failed.
func (c *cli) Execute(ctx context.Context, args []string) error {
	defer func() {
		if c.app != nil {
			c.app.Close()
			c.app = nil
		}
	}()
	c.root.SetArgs(args)
	return c.root.ExecuteContext(ctx)
}

// listFlags are shared by commands that page through a list.
type listFlags struct {
	max         int
	cutoff      string
	startCursor string
	skip        int
}

func (f *listFlags) register(cmd *cobra.Command, withCutoff bool) {
	cmd.Flags().IntVarP(&f.max, "max", "n", 0, "stop after this many records (0 = no limit)")
	cmd.Flags().StringVar(&f.startCursor, "start-cursor", "", "resume at this page token")
	cmd.Flags().IntVar(&f.skip, "skip", 0, "records of the start page already written by an earlier run")
	if withCutoff {
		cmd.Flags().StringVar(&f.cutoff, "cutoff", "", "stop at the first item published at or before this RFC3339 time")
	}
}

func (f *listFlags) options() ([]youtube.Option, error) {
	var opts []youtube.Option
	if f.max > 0 {
		opts = append(opts, youtube.WithMaxResults(f.max))
	}
	if f.skip < 0 {
		return nil, fmt.Errorf("invalid --skip %d, must not be negative", f.skip)
	}
	if f.startCursor != "" || f.skip > 0 {
		opts = append(opts, youtube.WithStartPosition(pagination.Position{Token: f.startCursor, Skip: f.skip}))
	}
	if f.cutoff != "" {
		t, ok := parse.ParseTime(f.cutoff)
		if !ok {
			return nil, fmt.Errorf("invalid --cutoff %q, want RFC3339", f.cutoff)
		}
		opts = append(opts, youtube.WithCutoff(t))
	}
	return opts, nil
}

func newVideosCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "videos ID...",
		Short: "Video metadata and statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			return a.writeStream(a.service.VideoMetadataStream(cmd.Context(), youtube.Many(args...)))
		},
	}
}

func newChannelsCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "channels ID...",
		Short: "Channel metadata and statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			return a.writeStream(a.service.ChannelMetadataStream(cmd.Context(), youtube.Many(args...)))
		},
	}
}

func newFeaturedCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "featured CHANNEL_ID...",
		Short: "Featured channels of channels",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			recs, err := a.service.FeaturedChannels(cmd.Context(), youtube.Many(args...))
			if werr := a.writeRecords(recs); werr != nil {
				return werr
			}
			return err
		},
	}
}

func newChannelIDCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "channel-id USERNAME_OR_URL",
		Short: "Resolve a legacy username or channel URL to a channel id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			arg := args[0]

			if isUser, err := youtube.IsUserURL(arg); err == nil {
				if !isUser {
					fmt.Fprintln(a.out, youtube.StripChannelID(arg))
					return nil
				}
				arg = youtube.StripChannelID(arg)
			}

			id, err := a.service.ChannelIDFromUsername(cmd.Context(), arg)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, id)
			return nil
		},
	}
}

func newPlaylistsCommand(current func() *app) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "playlists CHANNEL_ID",
		Short: "Playlists of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := lf.options()
			if err != nil {
				return err
			}
			a := current()
			return a.writeStream(a.service.PlaylistsStream(cmd.Context(), args[0], opts...))
		},
	}
	lf.register(cmd, true)
	return cmd
}

func newPlaylistVideosCommand(current func() *app) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "playlist-videos PLAYLIST_ID",
		Short: "Items of a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := lf.options()
			if err != nil {
				return err
			}
			a := current()
			return a.writeStream(a.service.PlaylistVideosStream(cmd.Context(), args[0], opts...))
		},
	}
	lf.register(cmd, true)
	return cmd
}

func newUploadsCommand(current func() *app) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "uploads CHANNEL_ID",
		Short: "Uploaded videos of a channel, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := lf.options()
			if err != nil {
				return err
			}
			a := current()
			return a.writeStream(a.service.PlaylistVideosStream(cmd.Context(), youtube.UploadPlaylistID(args[0]), opts...))
		},
	}
	lf.register(cmd, true)
	return cmd
}

func newSubscriptionsCommand(current func() *app) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "subscriptions CHANNEL_ID",
		Short: "Public subscriptions of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := lf.options()
			if err != nil {
				return err
			}
			a := current()
			return a.writeStream(a.service.SubscriptionsStream(cmd.Context(), args[0], opts...))
		},
	}
	lf.register(cmd, false)
	return cmd
}

func newCommentsCommand(current func() *app) *cobra.Command {
	var (
		lf      listFlags
		replies bool
	)
	cmd := &cobra.Command{
		Use:   "comments VIDEO_ID",
		Short: "Comments of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := lf.options()
			if err != nil {
				return err
			}
			a := current()
			recs, err := a.service.VideoComments(cmd.Context(), args[0], replies, opts...)
			if werr := a.writeRecords(recs); werr != nil {
				return werr
			}
			return err
		},
	}
	lf.register(cmd, true)
	cmd.Flags().BoolVar(&replies, "replies", false, "also fetch replies to top-level comments")
	return cmd
}

func newSearchCommand(current func() *app) *cobra.Command {
	var (
		lf     listFlags
		params youtube.SearchParams
		after  string
		before string
	)
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search videos, channels or playlists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Query = args[0]
			var err error
			if params.PublishedAfter, err = flagTime("published-after", after); err != nil {
				return err
			}
			if params.PublishedBefore, err = flagTime("published-before", before); err != nil {
				return err
			}

			opts, err := lf.options()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max") && lf.max <= 0 {
				opts = append(opts, youtube.WithMaxResults(0))
			}

			a := current()
			return a.writeStream(a.service.SearchStream(cmd.Context(), params, opts...))
		},
	}
	lf.register(cmd, false)
	cmd.Flags().StringVar(&params.Type, "type", "video", "video, channel or playlist")
	cmd.Flags().StringVar(&params.Order, "order", "relevance", "date, rating, relevance, title, videoCount or viewCount")
	cmd.Flags().StringVar(&params.ChannelID, "channel-id", "", "restrict results to a channel")
	cmd.Flags().StringVar(&params.RegionCode, "region", "", "ISO 3166-1 alpha-2 region code")
	cmd.Flags().StringVar(&params.RelevanceLanguage, "language", "", "ISO 639-1 language code")
	cmd.Flags().StringVar(&params.SafeSearch, "safe-search", "", "moderate, strict or none")
	cmd.Flags().StringVar(&after, "published-after", "", "RFC3339 lower bound")
	cmd.Flags().StringVar(&before, "published-before", "", "RFC3339 upper bound")
	return cmd
}

func flagTime(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, ok := parse.ParseTime(value)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid --%s %q, want RFC3339", name, value)
	}
	return t, nil
}

// writeStream writes records as they arrive. Records emitted before a
// failure are kept on stdout.
func (a *app) writeStream(s *pagination.Stream) error {
	enc := json.NewEncoder(a.out)
	for rec, err := range s.All() {
		if err != nil {
			return err
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	evt := a.logger.Info().
		Str("state", s.State().String()).
		Int("records", s.Count()).
		Int("pages", s.Pages())
	if pos, ok := s.Position(); ok {
		evt = evt.Str("cursor", pos.Token).Int("skip", pos.Skip)
	}
	evt.Msg("Done")
	return nil
}

func (a *app) writeRecords(recs []parse.Record) error {
	enc := json.NewEncoder(a.out)
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	return nil
}
