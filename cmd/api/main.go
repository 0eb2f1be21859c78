// Package main provides the entry point for the ReelChef API server
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alchemorsel/reelchef/internal/infrastructure/config"
	"github.com/alchemorsel/reelchef/internal/infrastructure/container"
	"github.com/alchemorsel/reelchef/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:   "reelchef-api",
		Short: "Serve the video analysis API and consume storage events",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				container.Server(configPath),
				fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
					return &fxevent.ZapLogger{Logger: log.Named("fx")}
				}),
				fx.StartTimeout(time.Minute),
				fx.StopTimeout(time.Minute),
				fx.Invoke(watchConfig),
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a config file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// watchConfig applies log level changes from the config file without a restart
func watchConfig(cfg *config.Config, level zap.AtomicLevel, log *zap.Logger) {
	cfg.Watch(func(next *config.Config) {
		level.SetLevel(logger.ParseLevel(next.Log.Level))
		log.Info("Config reloaded", zap.String("log_level", next.Log.Level))
	}, func(err error) {
		log.Warn("Ignoring invalid config change", zap.Error(err))
	})
}
