package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phrazzld/smart-extract/internal/domain"
	"github.com/phrazzld/smart-extract/internal/task"
)

// errAborted is returned when the user declines the confirmation prompt.
var errAborted = errors.New("aborted")

// maxStdinBytes bounds the selection read from stdin.
const maxStdinBytes = 1 << 20

// extract creates one note through the task queue and prints its vault path.
func (app *application) extract(ctx context.Context, text, source string, stdin io.Reader, stdout io.Writer) error {
	if text == "" {
		data, err := io.ReadAll(io.LimitReader(stdin, maxStdinBytes))
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	result, err := app.runTask(ctx, "extract", func(taskCtx context.Context) (any, error) {
		return app.services.Extract.CreateFromSelection(taskCtx, text, source)
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "Created %s\n", result)
	return err
}

// runTask enqueues work and waits for its outcome. Single-note commands share
// the queue with batch runs so AI calls stay serialized and throttled.
func (app *application) runTask(ctx context.Context, name string, work task.WorkFunc) (any, error) {
	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)

	_, err := app.queue.Enqueue(work,
		task.WithName(name),
		task.OnSuccess(func(result any) { done <- outcome{result: result} }),
		task.OnError(func(err error) { done <- outcome{err: err} }),
		task.OnDiscard(func(err error) { done <- outcome{err: err} }),
	)
	if err != nil {
		return nil, err
	}

	select {
	case out := <-done:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// runBatch processes every markdown file in folder with op after confirmation.
func (app *application) runBatch(
	ctx context.Context,
	op domain.Operation,
	folder string,
	confirm func(n int) (bool, error),
	stdout io.Writer,
) error {
	process, err := app.services.ProcessFunc(op)
	if err != nil {
		return err
	}

	paths, err := app.vault.ListMarkdown(folder)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		_, err := fmt.Fprintf(stdout, "No markdown files found in %s\n", folder)
		return err
	}

	ok, err := confirm(len(paths))
	if err != nil {
		return err
	}
	if !ok {
		return errAborted
	}

	summary, err := app.driver.Run(ctx, string(op), paths, process)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(stdout, summary.String()); err != nil {
		return err
	}
	for _, f := range summary.Failures {
		if _, err := fmt.Fprintf(stdout, "  failed: %s: %s\n", f.Path, f.Error); err != nil {
			return err
		}
	}
	return nil
}

// summarize writes a summary note for folder.
func (app *application) summarize(ctx context.Context, folder string, stdout io.Writer) error {
	result, err := app.runTask(ctx, "summarize "+folder, func(taskCtx context.Context) (any, error) {
		return app.services.Summary.SummarizeFolder(taskCtx, folder)
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "Created %s\n", result)
	return err
}

// prompter returns a confirmation function that asks on out and reads the answer
// from in. When yes is set every prompt is accepted without asking.
func prompter(in io.Reader, out io.Writer, yes bool) func(n int) (bool, error) {
	reader := bufio.NewReader(in)
	return func(n int) (bool, error) {
		if yes {
			return true, nil
		}
		if _, err := fmt.Fprintf(out, "Process %d files? [y/N] ", n); err != nil {
			return false, err
		}
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("failed to read answer: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
