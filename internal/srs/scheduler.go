// Package srs implements the spaced repetition scheduler.
//
// All functions are pure: they take the current time as a parameter, perform
// no I/O, and return new item values instead of mutating their arguments.
package srs

import (
	"fmt"
	"time"

	"github.com/benkyo-app/benkyo/internal/item"
)

// Intervals holds the review interval in days for each SRS level. The curve is
// hand-tuned rather than strictly exponential.
var Intervals = []int{1, 3, 7, 14, 30, 60, 120}

// MaxLevel is the maturity cap. Successful reviews never raise an item past it.
const MaxLevel = 6

// Outcome describes one answered question for an item.
type Outcome struct {
	Correct       bool
	UserAnswer    string
	CorrectAnswer string
}

// IntervalForLevel returns the review interval in days for an SRS level,
// clamped to the interval table.
func IntervalForLevel(level int) int {
	if level < 0 {
		level = 0
	}
	if level >= len(Intervals) {
		level = len(Intervals) - 1
	}
	return Intervals[level]
}

// ComputeNextReview applies a review outcome to an item and returns the updated
// item. A correct answer raises the SRS level by one (saturating at MaxLevel)
// and schedules the next review after the interval for the new level. A wrong
// answer resets the level to zero, makes the item immediately due again, and
// appends a human-readable reason to the error log fields.
func ComputeNextReview(it item.Item, outcome Outcome, now time.Time) item.Item {
	card := it.Schedule()

	if outcome.Correct {
		if card.SRSLevel < MaxLevel {
			card.SRSLevel++
		}
		next := now.AddDate(0, 0, IntervalForLevel(card.SRSLevel))
		card.NextReviewDate = next.Format(time.RFC3339)
		return it.Reschedule(card)
	}

	card.SRSLevel = 0
	card.NextReviewDate = now.Format(time.RFC3339)
	card.ErrorCount++

	reasons := make([]string, 0, len(card.ErrorReasons)+1)
	reasons = append(reasons, card.ErrorReasons...)
	reasons = append(reasons, fmt.Sprintf("chose %s instead of %s", outcome.UserAnswer, outcome.CorrectAnswer))
	card.ErrorReasons = reasons

	return it.Reschedule(card)
}

// IsDue reports whether an item is due on the calendar day of now. Reviews are
// scheduled by day, not by time of day: an item due at any instant today counts.
// Items with no next review date, and items whose date fails to parse, are due.
func IsDue(it item.Item, now time.Time) bool {
	card := it.Schedule()
	if card.NextReviewDate == "" {
		return true
	}
	next, err := time.Parse(time.RFC3339, card.NextReviewDate)
	if err != nil {
		return true
	}
	return !DateOnly(next.In(now.Location())).After(DateOnly(now))
}

// DueItems filters items to those due for review, preserving input order.
func DueItems(items []item.Item, now time.Time) []item.Item {
	var due []item.Item
	for _, it := range items {
		if IsDue(it, now) {
			due = append(due, it)
		}
	}
	return due
}

// DateOnly truncates a time to midnight of its calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
