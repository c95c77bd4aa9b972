package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"

	"github.com/benkyo-app/benkyo/internal/inference"
	"github.com/benkyo-app/benkyo/internal/item"
)

// PracticeCLI runs sentence-writing practice: for each grammar item the user
// writes their own sentence and the inference client grades it.
type PracticeCLI struct {
	client inference.Client
	items  []item.GrammarItem
	cursor int

	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
}

// NewPracticeCLI creates a practice CLI over the given grammar items.
func NewPracticeCLI(client inference.Client, items []item.GrammarItem) *PracticeCLI {
	return &PracticeCLI{
		client:       client,
		items:        items,
		stdinReader:  bufio.NewReader(os.Stdin),
		stdoutWriter: os.Stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
	}
}

// Run drives the practice loop until the items run out, the user types quit,
// or an interrupt arrives.
func (cli *PracticeCLI) Run(ctx context.Context) error {
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
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	return nil
}

// Session asks for and grades one sentence.
func (cli *PracticeCLI) Session(ctx context.Context) error {
	if cli.cursor >= len(cli.items) {
		fmt.Fprintln(cli.stdoutWriter, "\nPractice complete.")
		return errEnd
	}

	current := cli.items[cli.cursor]
	fmt.Fprintf(cli.stdoutWriter, "\n[%d/%d] ", cli.cursor+1, len(cli.items))
	_, _ = cli.bold.Fprintf(cli.stdoutWriter, "Write a sentence using: %s\n", current.Structure)
	if current.Meaning != "" {
		_, _ = cli.italic.Fprintln(cli.stdoutWriter, current.Meaning)
	}
	fmt.Fprint(cli.stdoutWriter, "> ")

	input, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	sentence := strings.TrimSpace(input)

	if sentence == "quit" || sentence == "exit" {
		fmt.Fprintln(cli.stdoutWriter, "Practice session ended.")
		return errEnd
	}
	if sentence == "" {
		fmt.Fprintln(cli.stdoutWriter, "Write a sentence, or type quit to stop.")
		return nil
	}

	result, err := cli.client.CheckSentence(ctx, inference.CheckSentenceRequest{
		Sentence:  sentence,
		Structure: current.Structure,
		Meaning:   current.Meaning,
	})
	if err != nil {
		return fmt.Errorf("client.CheckSentence() > %w", err)
	}

	if result.Correct {
		fmt.Fprint(cli.stdoutWriter, "✅ ")
		color.New(color.FgGreen).Fprintln(cli.stdoutWriter, result.Feedback)
	} else {
		fmt.Fprint(cli.stdoutWriter, "❌ ")
		color.New(color.FgRed).Fprintln(cli.stdoutWriter, result.Feedback)
	}
	for _, suggestion := range result.Suggestions {
		fmt.Fprintf(cli.stdoutWriter, "  - %s\n", suggestion)
	}
	if result.CorrectedSentence != "" {
		_, _ = cli.italic.Fprintf(cli.stdoutWriter, "Corrected: %s\n", result.CorrectedSentence)
	}

	cli.cursor++
	return nil
}
