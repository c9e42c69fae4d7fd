package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowbridge/flowbridge/pkg/cmd"
	"github.com/flowbridge/flowbridge/pkg/log"
	"github.com/flowbridge/flowbridge/pkg/reconcile"
	"github.com/flowbridge/flowbridge/pkg/watcher"
)

// NewSyncCommand reconciles workflow document files into the store once and
// prints the outcome.
func NewSyncCommand() *cli.Command {
	return &cli.Command{
		Name:    "sync",
		Aliases: []string{"s"},
		Usage:   "Reconcile workflow document files into the store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "path",
				Usage:    "Workflow JSON file or directory of files",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
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

			logger := log.WithModule("sync")

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
			target := command.String("path")

			info, err := os.Stat(target)
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", target, err)
			}

			if info.IsDir() {
				w := watcher.New(target, reconciler, nil, logger, 0, "")

				stats, err := w.SyncAll(ctx)
				if err != nil {
					return err
				}

				return printJSON(stats)
			}

			w := watcher.New("", reconciler, nil, logger, 0, "")

			result, err := w.SyncFile(ctx, target)
			if err != nil {
				return err
			}

			return printJSON(result)
		},
	}
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}
