// Package cli contains the interactive review session surface.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/benkyo-app/benkyo/internal/notify"
	"github.com/benkyo-app/benkyo/internal/session"
)

var errEnd = errors.New("end")

// ReviewCLI runs one review session over due items: one multiple-choice
// question per item, colored feedback, and a final tally notification.
type ReviewCLI struct {
	engine   *session.Engine
	flush    func() error
	notifier notify.Notifier

	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
}

// NewReviewCLI creates a review CLI over a started engine. flush persists the
// recorded answers when the session ends and may be nil.
func NewReviewCLI(engine *session.Engine, flush func() error, notifier notify.Notifier) *ReviewCLI {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &ReviewCLI{
		engine:       engine,
		flush:        flush,
		notifier:     notifier,
		stdinReader:  bufio.NewReader(os.Stdin),
		stdoutWriter: os.Stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
	}
}

// Run drives the session until it completes or the user interrupts. Answers
// recorded before an interrupt stay recorded.
func (cli *ReviewCLI) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(
		ctx,
		os.Interrupt,
	)
	defer cancel()

	errCh := make(chan error)
	go func() {
		defer close(errCh)

	LOOP:
		for {
			select {
			case <-ctx.Done():
				break LOOP
			default:
			}

			if err := cli.Session(ctx); err != nil {
				if errors.Is(err, errEnd) {
					break
				}
				errCh <- err
				break
			}
		}
	}()
	select {
	case <-ctx.Done():
		fmt.Fprintln(cli.stdoutWriter, "Received interrupt signal, exiting...")
		cli.engine.Cancel()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}

	if cli.flush != nil {
		if err := cli.flush(); err != nil {
			cli.notifier.Notify("saving progress failed: "+err.Error(), notify.SeverityWarning)
		}
	}
	return nil
}

// Session asks and grades one question.
func (cli *ReviewCLI) Session(ctx context.Context) error {
	if cli.engine.State() == session.StateComplete {
		cli.printSummary()
		return errEnd
	}

	question, err := cli.engine.Question()
	if err != nil {
		return fmt.Errorf("engine.Question() > %w", err)
	}

	current, total := cli.engine.Progress()
	fmt.Fprintf(cli.stdoutWriter, "\n[%d/%d] ", current, total)
	_, _ = cli.bold.Fprintln(cli.stdoutWriter, question.Prompt)
	if question.Subtext != "" {
		_, _ = cli.italic.Fprintln(cli.stdoutWriter, question.Subtext)
	}
	for i, option := range question.Options {
		fmt.Fprintf(cli.stdoutWriter, "  %d. %s\n", i+1, option)
	}
	fmt.Fprint(cli.stdoutWriter, "> ")

	input, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	choice, ok := parseChoice(input, question.Options)
	if !ok {
		fmt.Fprintf(cli.stdoutWriter, "Please answer with a number between 1 and %d.\n", len(question.Options))
		return nil
	}

	result, err := cli.engine.SubmitAnswer(choice)
	if err != nil {
		return fmt.Errorf("engine.SubmitAnswer() > %w", err)
	}

	if result.Correct {
		fmt.Fprint(cli.stdoutWriter, "✅ ")
		color.New(color.FgGreen).Fprintf(cli.stdoutWriter, "Correct! The answer is %s\n",
			cli.bold.Sprintf("%s", result.CorrectAnswer),
		)
	} else {
		fmt.Fprint(cli.stdoutWriter, "❌ ")
		color.New(color.FgRed).Fprintf(cli.stdoutWriter, "Wrong. The answer is %s\n",
			cli.bold.Sprintf("%s", result.CorrectAnswer),
		)
	}
	if cli.engine.ShowExplanation() && result.Explanation != "" {
		_, _ = cli.italic.Fprintln(cli.stdoutWriter, result.Explanation)
	}

	if _, err := cli.engine.Advance(); err != nil {
		return fmt.Errorf("engine.Advance() > %w", err)
	}
	return nil
}

func (cli *ReviewCLI) printSummary() {
	summary := cli.engine.Summary()
	fmt.Fprintf(cli.stdoutWriter, "\nSession complete: %d correct, %d wrong out of %d.\n",
		summary.Correct, summary.Wrong, summary.Total)

	if summary.Total > 0 {
		accuracy := 100 * summary.Correct / summary.Total
		cli.notifier.Notify(
			fmt.Sprintf("Review done: %d/%d correct (%d%%)", summary.Correct, summary.Total, accuracy),
			notify.SeverityInfo,
		)
	}
}

// parseChoice accepts a 1-based option number or the literal option text.
func parseChoice(input string, options []string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		if n < 1 || n > len(options) {
			return "", false
		}
		return options[n-1], true
	}

	for _, option := range options {
		if option == trimmed {
			return option, true
		}
	}
	return "", false
}
