package inference

import (
	"context"
)

// Client interface defines the methods for AI inference operations
type Client interface {
	CheckSentence(ctx context.Context, params CheckSentenceRequest) (CheckSentenceResponse, error)
	CheckDiary(ctx context.Context, params CheckDiaryRequest) (CheckDiaryResponse, error)
	SuggestTopic(ctx context.Context) (SuggestTopicResponse, error)
	AnalyzeErrors(ctx context.Context, params AnalyzeErrorsRequest) (AnalyzeErrorsResponse, error)
}

// CheckSentenceRequest holds a learner-written sentence and the grammar point
// it is supposed to practice.
type CheckSentenceRequest struct {
	Sentence  string `json:"sentence"`
	Structure string `json:"structure,omitempty"`
	Meaning   string `json:"meaning,omitempty"`
}

type CheckSentenceResponse struct {
	Correct           bool     `json:"correct"`
	Feedback          string   `json:"feedback"`
	Suggestions       []string `json:"suggestions,omitempty"`
	CorrectedSentence string   `json:"corrected_sentence,omitempty"`
}

// CheckDiaryRequest holds a multi-line diary entry the learner wrote.
type CheckDiaryRequest struct {
	Content string `json:"content"`
}

// DiaryError is one problem found in a diary entry, located by line number.
type DiaryError struct {
	Line    int    `json:"line"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type CheckDiaryResponse struct {
	Errors       []DiaryError `json:"errors"`
	Suggestions  []string     `json:"suggestions,omitempty"`
	OverallScore int          `json:"overall_score"`
}

// SuggestTopicResponse is a writing topic with guiding questions and a
// fill-in template to get the learner started.
type SuggestTopicResponse struct {
	Topic     string   `json:"topic"`
	Questions []string `json:"questions,omitempty"`
	Template  string   `json:"template,omitempty"`
}

// ReviewError is a single mistake handed to the analyzer.
type ReviewError struct {
	Category      string `json:"category"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
}

// AnalyzeErrorsRequest holds one day's mistakes.
type AnalyzeErrorsRequest struct {
	Errors []ReviewError `json:"errors"`
}

type AnalyzeErrorsResponse struct {
	Summary     string      `json:"summary"`
	WeakPoints  []WeakPoint `json:"weak_points"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

// WeakPoint names a recurring problem area across the day's mistakes.
type WeakPoint struct {
	Topic  string `json:"topic"`
	Detail string `json:"detail"`
}

const (
	DefaultMaxRetryAttempts = 3
)
