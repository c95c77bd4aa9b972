package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benkyo-app/benkyo/internal/inference"
	"github.com/benkyo-app/benkyo/internal/item"
)

type clientStub struct {
	gotRequest inference.AnalyzeErrorsRequest
	response   inference.AnalyzeErrorsResponse
	err        error
}

func (c *clientStub) CheckSentence(context.Context, inference.CheckSentenceRequest) (inference.CheckSentenceResponse, error) {
	return inference.CheckSentenceResponse{}, nil
}

func (c *clientStub) CheckDiary(context.Context, inference.CheckDiaryRequest) (inference.CheckDiaryResponse, error) {
	return inference.CheckDiaryResponse{}, nil
}

func (c *clientStub) SuggestTopic(context.Context) (inference.SuggestTopicResponse, error) {
	return inference.SuggestTopicResponse{}, nil
}

func (c *clientStub) AnalyzeErrors(_ context.Context, req inference.AnalyzeErrorsRequest) (inference.AnalyzeErrorsResponse, error) {
	c.gotRequest = req
	return c.response, c.err
}

func TestErrorsOn(t *testing.T) {
	day := time.Date(2025, 6, 10, 22, 0, 0, 0, time.UTC)
	log := []item.ErrorLogEntry{
		{ID: "morning", Date: time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)},
		{ID: "evening", Date: time.Date(2025, 6, 10, 23, 59, 0, 0, time.UTC)},
		{ID: "yesterday", Date: time.Date(2025, 6, 9, 23, 0, 0, 0, time.UTC)},
		{ID: "tomorrow", Date: time.Date(2025, 6, 11, 0, 1, 0, 0, time.UTC)},
	}

	selected := ErrorsOn(log, day)
	require.Len(t, selected, 2)
	assert.Equal(t, "morning", selected[0].ID)
	assert.Equal(t, "evening", selected[1].ID)
}

func TestAnalyzer_Run(t *testing.T) {
	now := time.Date(2025, 6, 10, 21, 30, 0, 0, time.UTC)
	log := []item.ErrorLogEntry{
		{
			ID:            "e1",
			Category:      item.CategoryGrammar,
			Question:      "寝坊した（　）遅刻した",
			UserAnswer:    "せいで",
			CorrectAnswer: "ばかりに",
			Explanation:   "chose せいで instead of ばかりに",
			Date:          now.Add(-2 * time.Hour),
		},
		{ID: "old", Category: item.CategoryKanji, Question: "old", Date: now.AddDate(0, 0, -1)},
	}

	stub := &clientStub{
		response: inference.AnalyzeErrorsResponse{Summary: "cause structures confused"},
	}
	analyzer := NewAnalyzer(stub)

	got, err := analyzer.Run(context.Background(), log, now)
	require.NoError(t, err)
	assert.Equal(t, "cause structures confused", got.Summary)

	require.Len(t, stub.gotRequest.Errors, 1)
	assert.Equal(t, "grammar", stub.gotRequest.Errors[0].Category)
	assert.Equal(t, "ばかりに", stub.gotRequest.Errors[0].CorrectAnswer)
}

func TestAnalyzer_Run_NoErrorsToday(t *testing.T) {
	now := time.Date(2025, 6, 10, 21, 30, 0, 0, time.UTC)
	log := []item.ErrorLogEntry{
		{ID: "old", Date: now.AddDate(0, 0, -3)},
	}

	analyzer := NewAnalyzer(&clientStub{})
	_, err := analyzer.Run(context.Background(), log, now)
	assert.ErrorIs(t, err, ErrNoErrors)
}

func TestBuildReport(t *testing.T) {
	june := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	july := time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC)
	lastYear := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	events := []item.ReviewEvent{
		{ID: "ev1", Category: item.CategoryGrammar, Correct: true, Date: june},
		{ID: "ev2", Category: item.CategoryGrammar, Correct: false, Date: june},
		{ID: "ev3", Category: item.CategoryKanji, Correct: true, Date: july},
		{ID: "ev4", Category: item.CategoryVocabulary, Correct: true, Date: lastYear},
	}
	errorLog := []item.ErrorLogEntry{
		{ID: "e1", ItemID: "g1", Category: item.CategoryGrammar, Question: "q1", Date: june},
		{ID: "e2", ItemID: "g1", Category: item.CategoryGrammar, Question: "q1", Date: june},
		{ID: "e3", ItemID: "k1", Category: item.CategoryKanji, Question: "q2", Date: lastYear},
	}

	tests := []struct {
		name        string
		year        int
		month       int
		wantTotal   int
		wantCorrect int
		wantErrors  int
	}{
		{name: "single month", year: 2025, month: 6, wantTotal: 2, wantCorrect: 1, wantErrors: 1},
		{name: "whole year", year: 2025, wantTotal: 3, wantCorrect: 2, wantErrors: 1},
		{name: "all time", wantTotal: 4, wantCorrect: 3, wantErrors: 2},
		{name: "empty month", year: 2025, month: 12, wantTotal: 0, wantCorrect: 0, wantErrors: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := BuildReport(events, errorLog, tt.year, tt.month)
			assert.Equal(t, tt.wantTotal, report.TotalReviews)
			assert.Equal(t, tt.wantCorrect, report.Correct)
			assert.Equal(t, tt.wantTotal-tt.wantCorrect, report.Wrong)
			assert.Len(t, report.TopErrors, tt.wantErrors)
		})
	}
}

func TestReport_Accuracy(t *testing.T) {
	assert.Equal(t, 0, Report{}.Accuracy())
	assert.Equal(t, 50, Report{TotalReviews: 2, Correct: 1}.Accuracy())
	assert.Equal(t, 100, Report{TotalReviews: 3, Correct: 3}.Accuracy())
}

func TestAnalyzer_Run_ClientError(t *testing.T) {
	now := time.Date(2025, 6, 10, 21, 30, 0, 0, time.UTC)
	log := []item.ErrorLogEntry{{ID: "e1", Date: now}}

	analyzer := NewAnalyzer(&clientStub{err: assert.AnError})
	_, err := analyzer.Run(context.Background(), log, now)
	assert.ErrorIs(t, err, assert.AnError)
}
