package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benkyo-app/benkyo/internal/inference"
)

type diaryCheckerStub struct {
	gotRequest inference.CheckDiaryRequest
	response   inference.CheckDiaryResponse
	err        error
	called     int
}

func (c *diaryCheckerStub) CheckDiary(_ context.Context, req inference.CheckDiaryRequest) (inference.CheckDiaryResponse, error) {
	c.called++
	c.gotRequest = req
	return c.response, c.err
}

func (c *diaryCheckerStub) CheckSentence(context.Context, inference.CheckSentenceRequest) (inference.CheckSentenceResponse, error) {
	return inference.CheckSentenceResponse{}, nil
}

func (c *diaryCheckerStub) SuggestTopic(context.Context) (inference.SuggestTopicResponse, error) {
	return inference.SuggestTopicResponse{}, nil
}

func (c *diaryCheckerStub) AnalyzeErrors(context.Context, inference.AnalyzeErrorsRequest) (inference.AnalyzeErrorsResponse, error) {
	return inference.AnalyzeErrorsResponse{}, nil
}

func newTestDiaryCLI(input string, checker inference.Client) (*DiaryCLI, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cli := &DiaryCLI{
		client:       checker,
		stdinReader:  bufio.NewReader(strings.NewReader(input)),
		stdoutWriter: out,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
	}
	return cli, out
}

func TestDiaryCLI_Run_GradesEntry(t *testing.T) {
	checker := &diaryCheckerStub{
		response: inference.CheckDiaryResponse{
			Errors: []inference.DiaryError{
				{Line: 2, Type: "vocabulary", Message: "Use 面白かった for a film"},
			},
			Suggestions:  []string{"Link the sentences with ので"},
			OverallScore: 72,
		},
	}
	cli, out := newTestDiaryCLI("今日は映画を見た。\nとてもうまいでした。\n\n", checker)

	require.NoError(t, cli.Run(context.Background()))

	assert.Equal(t, "今日は映画を見た。\nとてもうまいでした。", checker.gotRequest.Content)
	assert.Contains(t, out.String(), "line 2 [vocabulary] Use 面白かった for a film")
	assert.Contains(t, out.String(), "Link the sentences with ので")
	assert.Contains(t, out.String(), "Score: 72/100")
}

func TestDiaryCLI_Run_CleanEntry(t *testing.T) {
	checker := &diaryCheckerStub{
		response: inference.CheckDiaryResponse{OverallScore: 95},
	}
	cli, out := newTestDiaryCLI("今日は友達と図書館で勉強しました。\n\n", checker)

	require.NoError(t, cli.Run(context.Background()))
	assert.Contains(t, out.String(), "No problems found.")
	assert.Contains(t, out.String(), "Score: 95/100")
}

func TestDiaryCLI_Run_EmptyEntrySkipsClient(t *testing.T) {
	checker := &diaryCheckerStub{}
	cli, out := newTestDiaryCLI("\n", checker)

	require.NoError(t, cli.Run(context.Background()))
	assert.Zero(t, checker.called)
	assert.Contains(t, out.String(), "Nothing written.")
}

func TestDiaryCLI_Run_EOFEndsEntry(t *testing.T) {
	checker := &diaryCheckerStub{
		response: inference.CheckDiaryResponse{OverallScore: 90},
	}
	// No trailing newline: the entry ends at EOF.
	cli, _ := newTestDiaryCLI("今日は寒かったです。", checker)

	require.NoError(t, cli.Run(context.Background()))
	assert.Equal(t, "今日は寒かったです。", checker.gotRequest.Content)
}

func TestDiaryCLI_Run_ClientError(t *testing.T) {
	checker := &diaryCheckerStub{err: assert.AnError}
	cli, _ := newTestDiaryCLI("文です。\n\n", checker)

	err := cli.Run(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}
