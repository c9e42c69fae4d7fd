package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "flowbridge",
		Usage:                 "Validate, sync and run workflow documents",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewRunCommand(),
			NewSyncCommand(),
			NewValidateCommand(),
			NewWatchCommand(),
			NewProvisionCommand(),
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
