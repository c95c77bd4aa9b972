// Package analysis selects a day's mistakes and asks the inference client for
// a weak-point report. The daily trigger lives with the caller; everything here
// takes time as a parameter.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benkyo-app/benkyo/internal/inference"
	"github.com/benkyo-app/benkyo/internal/item"
	"github.com/benkyo-app/benkyo/internal/stats"
)

// ErrNoErrors is returned when the selected day has nothing to analyze.
var ErrNoErrors = errors.New("no errors on that day to analyze")

// ErrorsOn filters the log down to entries made on the same calendar day as
// day, in day's location.
func ErrorsOn(log []item.ErrorLogEntry, day time.Time) []item.ErrorLogEntry {
	y, m, d := day.Date()
	var selected []item.ErrorLogEntry
	for _, entry := range log {
		ey, em, ed := entry.Date.In(day.Location()).Date()
		if ey == y && em == m && ed == d {
			selected = append(selected, entry)
		}
	}
	return selected
}

// Analyzer runs the daily weak-point analysis.
type Analyzer struct {
	client inference.Client
}

func NewAnalyzer(client inference.Client) *Analyzer {
	return &Analyzer{client: client}
}

// Run analyzes the mistakes recorded on now's calendar day.
func (a *Analyzer) Run(ctx context.Context, log []item.ErrorLogEntry, now time.Time) (inference.AnalyzeErrorsResponse, error) {
	selected := ErrorsOn(log, now)
	if len(selected) == 0 {
		return inference.AnalyzeErrorsResponse{}, ErrNoErrors
	}

	request := inference.AnalyzeErrorsRequest{
		Errors: make([]inference.ReviewError, 0, len(selected)),
	}
	for _, entry := range selected {
		request.Errors = append(request.Errors, inference.ReviewError{
			Category:      string(entry.Category),
			Question:      entry.Question,
			UserAnswer:    entry.UserAnswer,
			CorrectAnswer: entry.CorrectAnswer,
			Explanation:   entry.Explanation,
		})
	}

	response, err := a.client.AnalyzeErrors(ctx, request)
	if err != nil {
		return inference.AnalyzeErrorsResponse{}, fmt.Errorf("client.AnalyzeErrors() > %w", err)
	}
	return response, nil
}

// Report aggregates review activity over a year or a single month.
type Report struct {
	TotalReviews      int
	Correct           int
	Wrong             int
	CorrectByCategory map[item.Category]int
	TopErrors         []stats.ErrorRank
}

// Accuracy returns the percentage of correct answers, 0 when no reviews.
func (r Report) Accuracy() int {
	if r.TotalReviews == 0 {
		return 0
	}
	return 100 * r.Correct / r.TotalReviews
}

// BuildReport filters the logs down to the given year (and month when month
// is not zero) and aggregates totals, per-category correct counts, and the
// most frequently missed items in that period. A year of zero covers
// everything.
func BuildReport(events []item.ReviewEvent, errorLog []item.ErrorLogEntry, year, month int) Report {
	inPeriod := func(date time.Time) bool {
		if year == 0 {
			return true
		}
		if date.Year() != year {
			return false
		}
		return month == 0 || int(date.Month()) == month
	}

	report := Report{
		CorrectByCategory: make(map[item.Category]int),
	}
	for _, ev := range events {
		if !inPeriod(ev.Date) {
			continue
		}
		report.TotalReviews++
		if ev.Correct {
			report.Correct++
			report.CorrectByCategory[ev.Category]++
		} else {
			report.Wrong++
		}
	}

	var selected []item.ErrorLogEntry
	for _, entry := range errorLog {
		if inPeriod(entry.Date) {
			selected = append(selected, entry)
		}
	}
	report.TopErrors = stats.RankErrors(selected, stats.DefaultRankLimit)

	return report
}
