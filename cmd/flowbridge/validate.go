package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowbridge/flowbridge/pkg/schema"
)

// NewValidateCommand checks a workflow document file against the document schema.
func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a workflow document file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the workflow JSON file",
				Required: true,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			data, err := os.ReadFile(command.String("file"))
			if err != nil {
				return fmt.Errorf("failed to read workflow file: %w", err)
			}

			if err := schema.ValidateDocument(data); err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, "Workflow document is valid")

			return nil
		},
	}
}
