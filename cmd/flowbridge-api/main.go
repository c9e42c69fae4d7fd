package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowbridge/flowbridge/pkg/cmd"
	"github.com/flowbridge/flowbridge/pkg/config"
	"github.com/flowbridge/flowbridge/pkg/log"
)

const defaultPort = 9090

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "flowbridge-api",
		Usage:                 "Serve the workflow sync API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file://, redis://, postgres://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the YAML configuration file",
				Sources: cli.EnvVars("FLOWBRIDGE_CONFIG"),
			},
			&cli.BoolFlag{
				Name:    "local-mode",
				Usage:   "Run in local mode: auth bypass and admin auto-provisioning",
				Sources: cli.EnvVars("FLOWBRIDGE_LOCAL_MODE"),
			},
			&cli.StringFlag{
				Name:    "api-token",
				Usage:   "Bearer token enforced outside local mode",
				Sources: cli.EnvVars("FLOWBRIDGE_API_TOKEN"),
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

			logger.InfoContext(ctx, "Initializing Flowbridge API")

			cfg := config.Default()

			if configPath := command.String("config"); configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}

				cfg = loaded
			}

			if command.Bool("local-mode") {
				cfg.LocalMode = true
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			api, err := NewAPI(ctx, logger, persistence, cfg, command.String("api-token"))
			if err != nil {
				return err
			}

			if err := api.Start(ctx, command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
