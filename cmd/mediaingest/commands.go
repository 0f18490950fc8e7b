package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mediaingest/internal/app"
	"mediaingest/internal/config"
	"mediaingest/internal/domain"
	appErrors "mediaingest/internal/errors"
	"mediaingest/internal/infra/exif"
	infrafs "mediaingest/internal/infra/fs"
	"mediaingest/internal/infra/volumes"
	"mediaingest/internal/logging"
	"mediaingest/internal/presentation"
	"mediaingest/internal/settings"
	"mediaingest/internal/tui"
)

// sessionUI is what a front end provides to an ingest session.
type sessionUI interface {
	app.MetadataProvider
	app.RepeatConfirmer
	app.SessionReporter
	Progress(event domain.ProgressEvent)
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "mediaingest",
		Short:         "Move photos and videos from SD cards into dated shoot folders",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "config", "", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), *cfg)
		},
	}
	cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(newIngestCommand(cfg), newSettingsCommand(cfg))
	return root
}

func newIngestCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <dir>",
		Short: "Ingest an existing folder without waiting for a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngestFolder(cmd, *cfg, args[0])
		},
	}
}

func newSettingsCommand(cfg *config.Config) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the destination folder",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := settings.NewJSONStore(nil, cfg.SettingsFile).Load()
			if err != nil {
				return err
			}
			presentation.Printer{Writer: cmd.OutOrStdout()}.PrintSettings(cfg.SettingsFile, current)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <path>",
		Short: "Set the destination folder (the Nextcloud sync folder)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetDestination(cmd, *cfg, afero.NewOsFs(), args[0])
		},
	}

	settingsCmd.AddCommand(show, set)
	return settingsCmd
}

func runSetDestination(cmd *cobra.Command, cfg config.Config, fsys afero.Fs, path string) error {
	if strings.TrimSpace(path) != "" {
		info, err := fsys.Stat(path)
		if err != nil {
			return appErrors.Wrap(appErrors.NotFound, "stat", path, err)
		}
		if !info.IsDir() {
			return appErrors.Wrap(appErrors.InvalidConfig, "settings", path, fmt.Errorf("%s is not a directory", path))
		}
	}

	if _, err := settings.SetDestination(settings.NewJSONStore(fsys, cfg.SettingsFile), path); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Nextcloud path saved successfully.")
	return nil
}

func loadSettings(cfg config.Config) (domain.Settings, error) {
	current, err := settings.NewJSONStore(nil, cfg.SettingsFile).Load()
	if err != nil {
		return domain.Settings{}, err
	}
	if current.NextcloudPath == "" {
		return domain.Settings{}, appErrors.Wrap(appErrors.SettingsIO, "settings", cfg.SettingsFile, appErrors.ErrNoDestination)
	}
	return current, nil
}

func newSession(cfg config.Config, dest domain.Settings, logger logging.Logger, ui sessionUI) *app.IngestSession {
	filesystem := infrafs.New(nil)
	exifReader := exif.Reader{}
	clock := clockwork.NewRealClock()

	return &app.IngestSession{
		Watcher: &app.DeviceWatcher{
			FS:       filesystem,
			Volumes:  volumes.Lister{},
			Clock:    clock,
			Interval: cfg.PollInterval,
			Logger:   logger,
		},
		Engine: &app.TransferEngine{
			FS:         filesystem,
			Logger:     logger,
			OnProgress: ui.Progress,
			Now:        clock.Now,
		},
		Metadata: ui,
		Repeat:   ui,
		Reporter: ui,
		Settings: dest,
		Logger:   logger,
		SuggestDate: func(ctx context.Context, batch domain.StagingBatch) string {
			return app.SuggestShootDate(ctx, filesystem, exifReader, batch.Path, clock.Now())
		},
		Now: clock.Now,
	}
}

func runWatch(ctx context.Context, cfg config.Config) error {
	dest, err := loadSettings(cfg)
	if err != nil {
		return err
	}
	if cfg.Plain {
		return runPlain(ctx, cfg, dest)
	}
	return runTUI(ctx, cfg, dest)
}

func runPlain(ctx context.Context, cfg config.Config, dest domain.Settings) error {
	logger := logging.New(os.Stderr, cfg.Verbose)
	logger.Infof("Destination: %s", dest.NextcloudPath)

	console := presentation.NewConsole(os.Stdin, os.Stdout, cfg.Verbose)
	_, err := newSession(cfg, dest, logger, console).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runTUI(ctx context.Context, cfg config.Config, dest domain.Settings) error {
	logger, closer := logging.NewFile(cfg.LogFile, cfg.Verbose)
	defer closer.Close()
	logger.Infof("Starting, destination %s", dest.NextcloudPath)

	program := tea.NewProgram(tui.NewModel(tui.Config{Destination: dest.NextcloudPath}), tea.WithContext(ctx))
	bridge := tui.NewBridge(program)
	session := newSession(cfg, dest, logger, bridge)

	g, gctx := errgroup.WithContext(ctx)
	sessionCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	var sessionErr error
	g.Go(func() error {
		// Leaving the program stops the session.
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		outcome, err := session.Run(sessionCtx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		if err != nil {
			logger.Errorf(err, "Session ended")
		}
		sessionErr = err
		bridge.Done(outcome, err)
		return nil
	})

	if err := g.Wait(); err != nil {
		return appErrors.Wrap(appErrors.Internal, "tui", "", err)
	}
	return sessionErr
}

func runIngestFolder(cmd *cobra.Command, cfg config.Config, dir string) error {
	ctx := cmd.Context()
	filesystem := infrafs.New(nil)
	if _, err := filesystem.Stat(dir); err != nil {
		return appErrors.Wrap(appErrors.NotFound, "stat", dir, err)
	}
	dest, err := loadSettings(cfg)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.Verbose)
	console := presentation.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout(), cfg.Verbose)
	stop := logger.Measure("ingest " + dir)
	summary, outcome, err := newSession(cfg, dest, logger, console).IngestFolder(ctx, dir)
	stop()
	if errors.Is(err, context.Canceled) {
		if summary.Total == 0 {
			return nil
		}
		err = nil
	}
	if err != nil {
		return err
	}
	if outcome == app.OutcomeCancelled {
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout())
	presentation.Printer{Writer: cmd.OutOrStdout(), Verbose: cfg.Verbose}.PrintSummary(summary)
	return nil
}
