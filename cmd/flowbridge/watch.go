package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/flowbridge/flowbridge/pkg/bridge"
	"github.com/flowbridge/flowbridge/pkg/cmd"
	"github.com/flowbridge/flowbridge/pkg/config"
	"github.com/flowbridge/flowbridge/pkg/log"
	"github.com/flowbridge/flowbridge/pkg/reconcile"
	"github.com/flowbridge/flowbridge/pkg/watcher"
)

// NewWatchCommand runs the file watcher and host bridge in the foreground,
// keeping the store converged with the watched directory until interrupted.
func NewWatchCommand() *cli.Command {
	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "Watch a directory of workflow documents and keep the store in sync",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "path",
				Usage:    "Directory of workflow JSON files to watch",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the YAML configuration file",
				Sources: cli.EnvVars("FLOWBRIDGE_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("watch")

			cfg := config.Default()

			if configPath := command.String("config"); configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}

				cfg = loaded
			}

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			reconciler := reconcile.NewReconciler(store.WorkflowRepository(), logger)

			publisher, subscriber, err := cmd.NewChannel(cfg.Bridge.Channel, logger)
			if err != nil {
				return err
			}

			hostBridge := bridge.NewBridge(cfg.Bridge.Enabled, publisher, subscriber, reconciler, logger)
			notifier := bridge.NewNotifier(hostBridge, time.Duration(cfg.Bridge.DebounceMS)*time.Millisecond, logger)

			watchCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := hostBridge.Listen(watchCtx); err != nil {
				return err
			}

			w := watcher.New(
				command.String("path"),
				reconciler,
				notifier,
				logger,
				time.Duration(cfg.Watcher.DebounceMS)*time.Millisecond,
				cfg.Watcher.ResyncSchedule,
			)

			if err := w.Start(watchCtx); err != nil {
				return err
			}

			defer w.Stop()

			// Converge once up front so the store reflects the directory
			// before the first file event.
			if _, err := w.SyncAll(watchCtx); err != nil {
				logger.ErrorContext(watchCtx, "Initial sync failed", "error", err)
			}

			<-watchCtx.Done()

			logger.Info("Shutting down watcher")

			return nil
		},
	}
}
