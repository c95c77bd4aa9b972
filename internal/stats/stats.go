// Package stats derives read-only dashboard views from the item collections
// and the review and error logs. All functions are pure given their inputs.
package stats

import (
	"sort"
	"time"

	"github.com/benkyo-app/benkyo/internal/item"
	"github.com/benkyo-app/benkyo/internal/srs"
)

const dayKeyFormat = "2006-01-02"

// DefaultRankLimit bounds RankErrors when the caller passes no limit.
const DefaultRankLimit = 10

// DueCounts holds per-category due item counts plus the combined total.
type DueCounts struct {
	Grammar    int
	Vocabulary int
	Kanji      int
	Contrast   int
	Total      int
}

// ByCategory returns the count for one category.
func (c DueCounts) ByCategory(category item.Category) int {
	switch category {
	case item.CategoryGrammar:
		return c.Grammar
	case item.CategoryVocabulary:
		return c.Vocabulary
	case item.CategoryKanji:
		return c.Kanji
	case item.CategoryContrast:
		return c.Contrast
	}
	return 0
}

// CountDue counts items due for review in each category.
func CountDue(itemsByCategory map[item.Category][]item.Item, now time.Time) DueCounts {
	var counts DueCounts
	for category, items := range itemsByCategory {
		n := len(srs.DueItems(items, now))
		switch category {
		case item.CategoryGrammar:
			counts.Grammar = n
		case item.CategoryVocabulary:
			counts.Vocabulary = n
		case item.CategoryKanji:
			counts.Kanji = n
		case item.CategoryContrast:
			counts.Contrast = n
		default:
			continue
		}
		counts.Total += n
	}
	return counts
}

// ErrorRank is one row of the frequently-missed ranking.
type ErrorRank struct {
	ItemID   string
	Category item.Category
	Question string
	Count    int
	LastDate time.Time
}

// RankErrors groups error log entries by item, counts occurrences and tracks
// the most recent one, then returns the top entries by count. Ties keep
// first-seen order. Entries that were never linked to an item are skipped.
func RankErrors(errorLog []item.ErrorLogEntry, limit int) []ErrorRank {
	if limit <= 0 {
		limit = DefaultRankLimit
	}

	index := make(map[string]int)
	var ranks []ErrorRank
	for _, entry := range errorLog {
		if entry.ItemID == "" {
			continue
		}
		i, ok := index[entry.ItemID]
		if !ok {
			i = len(ranks)
			index[entry.ItemID] = i
			ranks = append(ranks, ErrorRank{
				ItemID:   entry.ItemID,
				Category: entry.Category,
				Question: entry.Question,
			})
		}
		ranks[i].Count++
		if entry.Date.After(ranks[i].LastDate) {
			ranks[i].LastDate = entry.Date
		}
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Count > ranks[j].Count
	})

	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks
}

// Streak counts consecutive calendar days with at least one review event,
// walking backward from today. A day without events ends the streak, so the
// result is 0 whenever today has no event yet.
func Streak(events []item.ReviewEvent, now time.Time) int {
	days := make(map[string]struct{}, len(events))
	for _, ev := range events {
		days[ev.Date.In(now.Location()).Format(dayKeyFormat)] = struct{}{}
	}

	streak := 0
	for day := srs.DateOnly(now); ; day = day.AddDate(0, 0, -1) {
		if _, ok := days[day.Format(dayKeyFormat)]; !ok {
			break
		}
		streak++
	}
	return streak
}

// DayBucket holds the correct-answer counts per category for one calendar day.
type DayBucket struct {
	Date   time.Time
	Counts map[item.Category]int
}

// DailyBuckets builds a dense per-day table of correct answers per category
// for the last windowDays calendar days, oldest first. Days and categories
// with no activity are zero-filled so the result charts directly. Incorrect
// answers are excluded; they are covered by RankErrors instead.
func DailyBuckets(events []item.ReviewEvent, windowDays int, now time.Time) []DayBucket {
	if windowDays <= 0 {
		windowDays = 7
	}

	start := srs.DateOnly(now).AddDate(0, 0, -windowDays+1)
	buckets := make([]DayBucket, windowDays)
	indexByDay := make(map[string]int, windowDays)
	for i := range buckets {
		day := start.AddDate(0, 0, i)
		counts := make(map[item.Category]int, len(item.Categories()))
		for _, category := range item.Categories() {
			counts[category] = 0
		}
		buckets[i] = DayBucket{Date: day, Counts: counts}
		indexByDay[day.Format(dayKeyFormat)] = i
	}

	for _, ev := range events {
		if !ev.Correct {
			continue
		}
		key := ev.Date.In(now.Location()).Format(dayKeyFormat)
		if i, ok := indexByDay[key]; ok {
			buckets[i].Counts[ev.Category]++
		}
	}
	return buckets
}
