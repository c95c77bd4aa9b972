package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/benkyo-app/benkyo/internal/inference"
)

// DiaryCLI collects a diary entry from the terminal and has the inference
// client correct it line by line.
type DiaryCLI struct {
	client inference.Client

	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
}

// NewDiaryCLI creates a diary correction CLI.
func NewDiaryCLI(client inference.Client) *DiaryCLI {
	return &DiaryCLI{
		client:       client,
		stdinReader:  bufio.NewReader(os.Stdin),
		stdoutWriter: os.Stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
	}
}

// Run reads one diary entry (terminated by an empty line or EOF), grades it,
// and prints the corrections.
func (cli *DiaryCLI) Run(ctx context.Context) error {
	_, _ = cli.bold.Fprintln(cli.stdoutWriter, "Write today's diary entry in Japanese.")
	fmt.Fprintln(cli.stdoutWriter, "Finish with an empty line.")
	fmt.Fprint(cli.stdoutWriter, "> ")

	var lines []string
	for {
		line, err := cli.stdinReader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("error reading input: %w", err)
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			break
		}
		lines = append(lines, trimmed)
		if err == io.EOF {
			break
		}
		fmt.Fprint(cli.stdoutWriter, "> ")
	}

	content := strings.Join(lines, "\n")
	if strings.TrimSpace(content) == "" {
		fmt.Fprintln(cli.stdoutWriter, "Nothing written.")
		return nil
	}

	result, err := cli.client.CheckDiary(ctx, inference.CheckDiaryRequest{Content: content})
	if err != nil {
		return fmt.Errorf("client.CheckDiary() > %w", err)
	}

	cli.printResult(result)
	return nil
}

func (cli *DiaryCLI) printResult(result inference.CheckDiaryResponse) {
	if len(result.Errors) == 0 {
		fmt.Fprint(cli.stdoutWriter, "✅ ")
		color.New(color.FgGreen).Fprintln(cli.stdoutWriter, "No problems found.")
	} else {
		fmt.Fprintf(cli.stdoutWriter, "Found %d problems:\n", len(result.Errors))
		for _, diaryError := range result.Errors {
			fmt.Fprintf(cli.stdoutWriter, "  line %d [%s] %s\n", diaryError.Line, diaryError.Type, diaryError.Message)
		}
	}

	for _, suggestion := range result.Suggestions {
		_, _ = cli.italic.Fprintf(cli.stdoutWriter, "  - %s\n", suggestion)
	}
	fmt.Fprintf(cli.stdoutWriter, "Score: %d/100\n", result.OverallScore)
}
