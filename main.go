package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/borgmon/ics-importer/pkg/calendar"
	"github.com/borgmon/ics-importer/pkg/export"
	"github.com/borgmon/ics-importer/pkg/importer"
	"github.com/borgmon/ics-importer/pkg/logging"
	"github.com/borgmon/ics-importer/pkg/models"
	"github.com/borgmon/ics-importer/pkg/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	verbose    bool
	quiet      bool

	attendeeEmail  string
	attendeeName   string
	organizerEmail string
	outputDir      string
	start          string
	end            string
	keywords       []string
	aggregate      bool
	teamCalendars  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "ics-importer [flags] URL...",
		Short: "Generate RSVP invites, per-feed or per-team calendars from ICS feeds",
		Long: `ics-importer reads one or more ICS feeds (Vereinsplaner, Google Calendar, ...),
filters their events by date and keyword and writes either one RSVP invitation
per event, one calendar per feed (--aggregate) or one calendar per team
(--team-calendars).

Without URL arguments the sources from the config file are used.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts, args)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", store.DefaultConfigPath(), "Path to the YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.quiet, "quiet", false, "Suppress informational output")
	cmd.PersistentFlags().StringVar(&opts.start, "start", "", "Only import events starting on/after this ISO date (YYYY-MM-DD) or datetime")
	cmd.PersistentFlags().StringVar(&opts.end, "end", "", "Only import events starting on/before this ISO date (YYYY-MM-DD) or datetime")
	cmd.PersistentFlags().StringArrayVar(&opts.keywords, "exclude-keyword", nil,
		"Exclude events whose summary contains this keyword (case-sensitive, repeatable). "+
			"Defaults to U9, U10 and Schultraining, or only Schultraining for team calendars")

	cmd.Flags().StringVar(&opts.attendeeEmail, "attendee-email", "", "Email of the attendee who will receive the invitations")
	cmd.Flags().StringVar(&opts.attendeeName, "attendee-name", "", "Display name of the attendee (defaults to attendee email)")
	cmd.Flags().StringVar(&opts.organizerEmail, "organizer-email", "", "Email address to set as the organizer (defaults to attendee email)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "invites", "Directory where the ICS files are written")
	cmd.Flags().BoolVar(&opts.aggregate, "aggregate", false, "Combine events per source into standalone ICS files instead of invitations")
	cmd.Flags().BoolVar(&opts.teamCalendars, "team-calendars", false, "Generate a separate ICS file for each team")
	cmd.MarkFlagsMutuallyExclusive("aggregate", "team-calendars")

	cmd.AddCommand(newServeCmd(opts), newInitCmd(opts))
	return cmd
}

func (o *options) mode() models.Mode {
	switch {
	case o.aggregate:
		return models.ModeAggregate
	case o.teamCalendars:
		return models.ModeTeamCalendars
	default:
		return models.ModeInvites
	}
}

// setup loads the config file and builds the logger
func (o *options) setup() (*models.Config, *zap.Logger, error) {
	config, err := store.NewConfigStore(o.configPath).Load()
	if err != nil {
		return nil, nil, err
	}

	logConfig := config.Log
	switch {
	case o.verbose:
		logConfig.Level = "debug"
	case o.quiet:
		logConfig.Level = "warn"
	}
	logger, err := logging.New(logConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return config, logger, nil
}

// request resolves sources, window and keywords from flags and config.
// Flags win over the config file.
func (o *options) request(cmd *cobra.Command, config *models.Config, mode models.Mode, args []string) (importer.Request, error) {
	start, err := calendar.ParseBound(o.start, calendar.StartBound)
	if err != nil {
		return importer.Request{}, err
	}
	end, err := calendar.ParseBound(o.end, calendar.EndBound)
	if err != nil {
		return importer.Request{}, err
	}

	if len(args) == 0 && config.NeedsConfiguration() {
		return importer.Request{}, fmt.Errorf("%w: pass feed URLs or run 'ics-importer init URL...'", importer.ErrNoSources)
	}

	sources := config.Sources
	if len(args) > 0 {
		sources = make([]models.ICalSource, 0, len(args))
		for _, arg := range args {
			sources = append(sources, models.SourceFromURL(arg))
		}
	}

	keywords := config.KeywordsFor(mode)
	if cmd.Flags().Changed("exclude-keyword") {
		keywords = o.keywords
	}

	return importer.Request{
		Sources:  sources,
		Window:   calendar.Window{Start: start, End: end},
		Keywords: keywords,
	}, nil
}

func runBatch(cmd *cobra.Command, opts *options, args []string) error {
	mode := opts.mode()
	if mode == models.ModeInvites && opts.attendeeEmail == "" {
		return fmt.Errorf("--attendee-email is required unless --aggregate or --team-calendars is set")
	}

	config, logger, err := opts.setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	req, err := opts.request(cmd, config, mode, args)
	if err != nil {
		return err
	}

	outputDir := config.OutputDir
	if cmd.Flags().Changed("output-dir") || outputDir == "" {
		outputDir = opts.outputDir
	}
	resolved, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("resolve output directory: %w", err)
	}

	im := importer.New(calendar.NewFetcher(logger), logger)
	im.Workers = config.Workers
	writer := export.NewWriter(outputDir)
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	switch mode {
	case models.ModeAggregate:
		files, err := im.Aggregate(ctx, req, writer)
		if err != nil {
			return err
		}
		if !opts.quiet {
			fmt.Fprintf(out, "Wrote %d calendar files to %s\n", len(files), resolved)
			for _, f := range files {
				fmt.Fprintf(out, " - %s: %s\n", filepath.Base(f.Path), f.Label)
			}
		}

	case models.ModeTeamCalendars:
		files, err := im.TeamCalendars(ctx, req, writer)
		if err != nil {
			return err
		}
		if !opts.quiet {
			fmt.Fprintf(out, "Wrote %d team calendars to %s\n", len(files), resolved)
			for _, f := range files {
				fmt.Fprintf(out, " - %s: %s\n", filepath.Base(f.Path), f.Label)
			}
		}

	default:
		invitee := export.Invitee{
			Email:          opts.attendeeEmail,
			Name:           opts.attendeeName,
			OrganizerEmail: opts.organizerEmail,
		}
		paths, err := im.Invites(ctx, req, writer, invitee)
		if err != nil {
			return err
		}
		if !opts.quiet {
			fmt.Fprintf(out, "Wrote %d invitation files to %s\n", len(paths), resolved)
		}
	}
	return nil
}
