package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/flowbridge/flowbridge/pkg/log"
	"github.com/flowbridge/flowbridge/pkg/schema"
)

const defaultRunTimeout = 5 * time.Minute

// ErrExecutionFailed is returned when the engine reports a non-success status.
var ErrExecutionFailed = errors.New("workflow execution failed")

// NewRunCommand executes a workflow document file against the external
// execution engine and prints the execution result JSON to stdout.
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Execute a workflow document file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the workflow JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "engine-url",
				Usage:    "Base URL of the workflow execution engine",
				Required: true,
				Sources:  cli.EnvVars("ENGINE_URL"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Execution timeout",
				Value: defaultRunTimeout,
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

			logger := log.WithModule("run")

			data, err := os.ReadFile(command.String("file"))
			if err != nil {
				return fmt.Errorf("failed to read workflow file: %w", err)
			}

			if err := schema.ValidateDocument(data); err != nil {
				return err
			}

			runCtx, cancel := context.WithTimeout(ctx, command.Duration("timeout"))
			defer cancel()

			engineURL := command.String("engine-url")
			logger.InfoContext(ctx, "Submitting workflow to engine", "engine", engineURL)

			result, err := executeOnEngine(runCtx, engineURL, data)
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, string(result))

			return nil
		},
	}
}

// executeOnEngine submits the document to the engine's run endpoint and
// returns the raw execution result body.
func executeOnEngine(ctx context.Context, engineURL string, document []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, engineURL+"/workflows/run", bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to build engine request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach execution engine: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: engine returned %s: %s", ErrExecutionFailed, resp.Status, string(body))
	}

	return body, nil
}
