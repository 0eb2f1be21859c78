// Package main provides a CLI that re-runs the analysis pipeline over stored videos
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alchemorsel/reelchef/internal/application/analysis"
	"github.com/alchemorsel/reelchef/internal/domain/video"
	"github.com/alchemorsel/reelchef/internal/infrastructure/config"
	"github.com/alchemorsel/reelchef/internal/infrastructure/container"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type options struct {
	configPath string
	status     string
	limit      int
	prescreen  bool
	refresh    bool
	scratchDir string
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "reanalyze [video-id...]",
		Short: "Re-run recipe analysis for stored videos",
		Long: `Re-run recipe analysis for the given video ids, or for every video in
--status when no ids are given. Videos are processed one at a time and
the command exits non-zero if any of them fail.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate(opts); err != nil {
				return err
			}
			return run(cmd.Context(), opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a config file")
	flags.StringVar(&opts.status, "status", string(video.StatusFailed), "status to select when no ids are given")
	flags.IntVar(&opts.limit, "limit", 0, "maximum number of videos to select (0 for no limit)")
	flags.BoolVar(&opts.prescreen, "prescreen", false, "classify each video first and skip non-cooking content")
	flags.BoolVar(&opts.refresh, "refresh", false, "drop cached analyses before running")
	flags.StringVar(&opts.scratchDir, "scratch-dir", "", "directory for downloaded videos (removed afterwards)")

	return cmd
}

func validate(opts *options) error {
	switch video.Status(opts.status) {
	case video.StatusPending, video.StatusProcessing, video.StatusActive, video.StatusFailed:
	default:
		return fmt.Errorf("unknown status %q", opts.status)
	}
	if opts.limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	return nil
}

func run(ctx context.Context, opts *options, ids []string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var runner *analysis.BatchRunner
	app := fx.New(
		container.Core(opts.configPath),
		fx.NopLogger,
		fx.Decorate(func(cfg *config.Config) *config.Config {
			if opts.scratchDir != "" {
				cfg.Analysis.ScratchDir = opts.scratchDir
			}
			return cfg
		}),
		fx.Populate(&runner),
	)

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		_ = app.Stop(stopCtx)
	}()

	summary, err := runner.Run(ctx, analysis.BatchRequest{
		IDs:       ids,
		Status:    video.Status(opts.status),
		Limit:     opts.limit,
		PreScreen: opts.prescreen,
		Refresh:   opts.refresh,
	})
	if err != nil {
		return err
	}

	fmt.Printf("processed: %d  rejected: %d  failed: %d  (%s)\n",
		summary.Processed, len(summary.Rejected), len(summary.Failed), summary.Duration.Round(time.Millisecond))
	for _, f := range summary.Failed {
		fmt.Printf("  %s: %v\n", f.VideoID, f.Err)
	}

	if !summary.OK() {
		return fmt.Errorf("%d video(s) failed", len(summary.Failed))
	}
	return nil
}
