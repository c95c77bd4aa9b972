// Package session drives one interactive review pass over a batch of due
// items: shuffle once, ask one multiple-choice question per item, apply the
// scheduler on every answer, and report a final tally.
package session

import (
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/benkyo-app/benkyo/internal/item"
	"github.com/benkyo-app/benkyo/internal/srs"
)

// ErrInvalidState is returned when an operation does not match the session
// state, e.g. submitting an answer twice or advancing before answering. The
// engine rejects such calls without touching counters or logs.
var ErrInvalidState = errors.New("session: operation not valid in current state")

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateAwaitingAnswer
	StateAnswered
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingAnswer:
		return "awaiting answer"
	case StateAnswered:
		return "answered"
	case StateComplete:
		return "complete"
	}
	return "unknown"
}

// Recorder receives the effects of an answered question: the rescheduled item,
// the review event, and the error log entry on a wrong answer. The store
// implements it.
type Recorder interface {
	ReplaceItem(item.Item)
	AppendReviewEvent(item.ReviewEvent)
	AppendErrorLog(item.ErrorLogEntry)
}

// Result reports the outcome of one submitted answer.
type Result struct {
	Correct       bool
	CorrectAnswer string
	Explanation   string
	Updated       item.Item
}

// Summary is the final tally of a session.
type Summary struct {
	Correct int
	Wrong   int
	Total   int
}

// Engine is the review session state machine. It assumes single-session
// discipline: callers must not run two sessions concurrently against the same
// item set. All methods are synchronous.
type Engine struct {
	recorder Recorder
	rng      *rand.Rand
	now      func() time.Time

	state           State
	queue           []item.Item
	pool            Pool
	cursor          int
	question        *Question
	showExplanation bool
	correctCount    int
	wrongCount      int
}

// NewEngine creates an idle engine. A nil clock defaults to time.Now; a nil
// rng gets a time-seeded source.
func NewEngine(recorder Recorder, rng *rand.Rand, now func() time.Time) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		recorder: recorder,
		rng:      rng,
		now:      now,
		state:    StateIdle,
	}
}

// Start begins a session over the given batch. The batch is copied and
// shuffled once (Fisher-Yates); the pool snapshot supplies distractors for the
// whole session. An empty batch completes immediately with zero counts.
func (e *Engine) Start(items []item.Item, pool Pool) State {
	queue := make([]item.Item, len(items))
	copy(queue, items)
	e.rng.Shuffle(len(queue), func(i, j int) {
		queue[i], queue[j] = queue[j], queue[i]
	})

	e.queue = queue
	e.pool = pool
	e.cursor = 0
	e.correctCount = 0
	e.wrongCount = 0
	e.showExplanation = false

	if len(queue) == 0 {
		e.question = nil
		e.state = StateComplete
		return e.state
	}

	question := GenerateQuestion(queue[0], pool, e.rng)
	e.question = &question
	e.state = StateAwaitingAnswer
	return e.state
}

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Question returns the question for the current item.
func (e *Engine) Question() (Question, error) {
	if e.question == nil {
		return Question{}, ErrInvalidState
	}
	return *e.question, nil
}

// Progress returns the 1-based position of the current item and the total.
func (e *Engine) Progress() (current, total int) {
	return e.cursor + 1, len(e.queue)
}

// ShowExplanation reports whether the current item has been answered and its
// explanation should be displayed.
func (e *Engine) ShowExplanation() bool { return e.showExplanation }

// SubmitAnswer records the chosen option for the current question: exactly one
// review event, exactly one scheduler application, and on a wrong answer
// exactly one error log entry. Calling it outside AwaitingAnswer returns
// ErrInvalidState and changes nothing.
func (e *Engine) SubmitAnswer(choice string) (Result, error) {
	if e.state != StateAwaitingAnswer {
		return Result{}, ErrInvalidState
	}

	question := *e.question
	now := e.now()
	correct := choice == question.CorrectAnswer

	updated := srs.ComputeNextReview(e.queue[e.cursor], srs.Outcome{
		Correct:       correct,
		UserAnswer:    choice,
		CorrectAnswer: question.CorrectAnswer,
	}, now)
	e.queue[e.cursor] = updated
	e.recorder.ReplaceItem(updated)

	e.recorder.AppendReviewEvent(item.ReviewEvent{
		ID:            uuid.NewString(),
		Category:      question.Category,
		ItemID:        question.ItemID,
		Correct:       correct,
		Question:      question.Prompt,
		UserAnswer:    choice,
		CorrectAnswer: question.CorrectAnswer,
		Date:          now,
	})

	if correct {
		e.correctCount++
	} else {
		e.wrongCount++
		e.recorder.AppendErrorLog(item.ErrorLogEntry{
			ID:            uuid.NewString(),
			Category:      question.Category,
			ItemID:        question.ItemID,
			Question:      question.Prompt,
			UserAnswer:    choice,
			CorrectAnswer: question.CorrectAnswer,
			Explanation:   question.Explanation,
			Date:          now,
		})
	}

	e.showExplanation = true
	e.state = StateAnswered
	return Result{
		Correct:       correct,
		CorrectAnswer: question.CorrectAnswer,
		Explanation:   question.Explanation,
		Updated:       updated,
	}, nil
}

// Advance moves to the next item, or completes the session after the last one.
func (e *Engine) Advance() (State, error) {
	if e.state != StateAnswered {
		return e.state, ErrInvalidState
	}

	if e.cursor+1 < len(e.queue) {
		e.cursor++
		question := GenerateQuestion(e.queue[e.cursor], e.pool, e.rng)
		e.question = &question
		e.showExplanation = false
		e.state = StateAwaitingAnswer
		return e.state, nil
	}

	e.question = nil
	e.showExplanation = false
	e.state = StateComplete
	return e.state, nil
}

// Cancel abandons the session. Already-submitted answers stay recorded;
// unanswered items are not penalized.
func (e *Engine) Cancel() {
	e.queue = nil
	e.pool = nil
	e.question = nil
	e.cursor = 0
	e.showExplanation = false
	e.state = StateIdle
}

// Summary returns the tally of answered questions so far.
func (e *Engine) Summary() Summary {
	return Summary{
		Correct: e.correctCount,
		Wrong:   e.wrongCount,
		Total:   e.correctCount + e.wrongCount,
	}
}
