// Package main implements the smartextract command, which turns selected text
// into linked notes and runs AI tagging, metadata generation, rewriting and
// folder summaries over a markdown vault.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/smart-extract/internal/domain"
	"github.com/phrazzld/smart-extract/internal/platform/logger"
	"github.com/phrazzld/smart-extract/internal/redact"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	inv, err := parseArgs(args, stderr)
	if errors.Is(err, errHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if err := execute(ctx, inv, stdin, stdout, stderr); err != nil {
		if errors.Is(err, errAborted) {
			fmt.Fprintln(stderr, "Aborted.")
			return 1
		}
		fmt.Fprintf(stderr, "Error: %s\n", redact.Error(err))
		return 1
	}
	return 0
}

// execute loads configuration, initializes the application and runs the command.
func execute(ctx context.Context, inv *invocation, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, v, err := loadConfig(inv)
	if err != nil {
		return err
	}

	log, err := logger.Setup(cfg.Log, stderr)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	analyzer, err := newAnalyzer(ctx, cfg, log)
	if err != nil {
		return err
	}

	var progress io.Writer
	if inv.command != "serve" {
		progress = stderr
	}
	app, err := newApplication(ctx, cfg, log, analyzer, progress)
	if err != nil {
		return err
	}
	defer app.cleanup()

	switch op := domain.Operation(inv.command); {
	case inv.command == "serve":
		return app.serve(ctx, v, inv.configPath != "")
	case op == domain.OperationExtract:
		return app.extract(ctx, inv.text, inv.source, stdin, stdout)
	case op == domain.OperationSummarize:
		return app.summarize(ctx, inv.folder, stdout)
	default:
		return app.runBatch(ctx, op, inv.folder, prompter(stdin, stderr, inv.yes), stdout)
	}
}
