package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowbridge/flowbridge/pkg/cmd"
	"github.com/flowbridge/flowbridge/pkg/config"
	"github.com/flowbridge/flowbridge/pkg/log"
	"github.com/flowbridge/flowbridge/pkg/provision"
)

// NewProvisionCommand runs the local-admin provisioner once.
func NewProvisionCommand() *cli.Command {
	return &cli.Command{
		Name:  "provision",
		Usage: "Ensure the local admin user and personal project exist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "admin-email",
				Usage:   "Email of the local admin user",
				Value:   config.DefaultAdminEmail,
				Sources: cli.EnvVars("FLOWBRIDGE_ADMIN_EMAIL"),
			},
			&cli.StringFlag{
				Name:    "admin-password",
				Usage:   "Default password set when the admin user has none",
				Sources: cli.EnvVars("FLOWBRIDGE_ADMIN_PASSWORD"),
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

			logger := log.WithModule("provision")

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			provisioner := provision.NewProvisioner(
				store.UserRepository(),
				store.ProjectRepository(),
				logger,
				true,
				command.String("admin-email"),
				command.String("admin-password"),
			)

			admin, err := provisioner.EnsureLocalAdmin(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "Local admin ready: %s (%s)\n", admin.Email, admin.ID)

			return nil
		},
	}
}
