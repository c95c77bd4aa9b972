package datasync

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/benkyo-app/benkyo/internal/item"
)

// ErrorLogImportResult tracks counts for an error-log sheet import.
type ErrorLogImportResult struct {
	Imported    int
	RowsSkipped int
}

// errorLogColumns maps a field to its column aliases, English first and the
// sheet's Vietnamese headers second.
var errorLogColumns = map[string][]string{
	"date":          {"date", "ngày"},
	"source":        {"source", "nguồn"},
	"part":          {"part", "phần"},
	"question":      {"passage or question (short)", "passage", "question", "câu hỏi"},
	"userAnswer":    {"your answer", "câu trả lời của bạn"},
	"correctAnswer": {"correct answer", "đáp án đúng", "correct"},
	"explanation":   {"explain error reason", "explain", "giải thích", "explanation"},
	"srs":           {"srs?", "srs", "srs card"},
	"plannedReview": {"planned review date", "review date", "ngày ôn"},
	"status":        {"status", "trạng thái"},
	"notes":         {"notes", "ghi chú"},
}

// ImportErrorLog reads one error-log sheet from a workbook. An empty sheet
// name falls back to the first sheet.
func ImportErrorLog(path, sheet string, now time.Time) ([]item.ErrorLogEntry, *ErrorLogImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("excelize.OpenFile(%s) > %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("f.GetRows(%s) > %w", sheet, err)
	}

	entries, result := ParseErrorLogRows(rows, now)
	return entries, result, nil
}

// ParseErrorLogRows converts raw sheet rows into error log entries. Rows
// without a question, and rows whose part does not map to a known item
// category, are counted as skipped.
func ParseErrorLogRows(rows [][]string, now time.Time) ([]item.ErrorLogEntry, *ErrorLogImportResult) {
	result := &ErrorLogImportResult{}
	if len(rows) < 2 {
		return nil, result
	}
	h := newHeader(rows[0])
	field := func(row []string, name string) string {
		return h.get(row, errorLogColumns[name]...)
	}

	var entries []item.ErrorLogEntry
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		question := field(row, "question")
		if question == "" {
			result.RowsSkipped++
			continue
		}
		category, err := normalizePart(field(row, "part"))
		if err != nil {
			result.RowsSkipped++
			continue
		}

		status := field(row, "status")
		if status == "" {
			status = "New"
		}
		source := field(row, "source")
		if source == "" {
			source = "Unknown"
		}

		entries = append(entries, item.ErrorLogEntry{
			ID:                uuid.NewString(),
			Category:          category,
			Question:          question,
			UserAnswer:        field(row, "userAnswer"),
			CorrectAnswer:     field(row, "correctAnswer"),
			Explanation:       field(row, "explanation"),
			Source:            source,
			Status:            status,
			NeedsSRS:          parseSRSValue(field(row, "srs")),
			PlannedReviewDate: parseSheetDateString(field(row, "plannedReview")),
			Notes:             field(row, "notes"),
			Date:              parseSheetDate(field(row, "date"), now),
		})
		result.Imported++
	}
	return entries, result
}

// normalizePart maps a sheet part label to an item category. Reading and
// listening rows have no item variant to attach to and are rejected.
func normalizePart(part string) (item.Category, error) {
	lower := strings.ToLower(part)
	switch {
	case strings.Contains(lower, "grammar"), strings.Contains(lower, "ngữ pháp"):
		return item.CategoryGrammar, nil
	case strings.Contains(lower, "vocab"), strings.Contains(lower, "từ vựng"):
		return item.CategoryVocabulary, nil
	case strings.Contains(lower, "kanji"), strings.Contains(lower, "chữ hán"):
		return item.CategoryKanji, nil
	case strings.Contains(lower, "contrast"):
		return item.CategoryContrast, nil
	}
	return "", fmt.Errorf("no item category for part %q", part)
}

func parseSRSValue(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1", "có":
		return true
	}
	return false
}

// excelEpochOffsetDays is the serial number of the Unix epoch in a workbook's
// 1900 date system.
const excelEpochOffsetDays = 25569

// parseSheetDate accepts DD/MM/YYYY, Excel serial numbers and RFC3339 strings,
// falling back to now for anything else.
func parseSheetDate(value string, now time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return now
	}

	if strings.Contains(value, "/") {
		if t, err := time.ParseInLocation("2/1/2006", value, time.UTC); err == nil {
			return t
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Unix(int64((serial-excelEpochOffsetDays)*86400), 0).UTC()
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}

	return now
}

// parseSheetDateString normalizes an optional date cell to RFC3339, keeping ""
// when the cell is empty.
func parseSheetDateString(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	t := parseSheetDate(value, time.Time{})
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

var (
	parenthesesPattern   = regexp.MustCompile(`[（(]([^）)]+)[）)]`)
	japaneseQuotePattern = regexp.MustCompile(`[「『]([^」』]+)[」』]`)
	tildePattern         = regexp.MustCompile(`～[^\s、。]+`)
	kanjiReadingPattern  = regexp.MustCompile(`([\x{4e00}-\x{9faf}]+)([\x{3041}-\x{3093}]*)`)
	kanjiPattern         = regexp.MustCompile(`[\x{4e00}-\x{9faf}]`)
)

// ConvertErrorLogToItems turns needs-review entries into fresh level-0 items,
// skipping resolved entries and anything already present in the existing pool.
func ConvertErrorLogToItems(entries []item.ErrorLogEntry, existing map[item.Category][]item.Item, now time.Time) []item.Item {
	var items []item.Item
	for _, entry := range entries {
		if entry.Status == "Done" || entry.Status == "Archived" {
			continue
		}
		if !entry.NeedsSRS {
			continue
		}

		card := item.Card{
			ID:             uuid.NewString(),
			Level:          guessJLPTLevel(entry.Source),
			SRSLevel:       0,
			NextReviewDate: entry.PlannedReviewDate,
			ErrorCount:     1,
			ErrorReasons:   []string{entry.Explanation},
			CreatedAt:      entry.Date,
		}
		if card.NextReviewDate == "" {
			card.NextReviewDate = now.Format(time.RFC3339)
		}

		switch entry.Category {
		case item.CategoryGrammar:
			structure := extractGrammarStructure(entry.Question, entry.CorrectAnswer)
			if grammarExists(existing[item.CategoryGrammar], structure, entry.Question) {
				continue
			}
			items = append(items, item.GrammarItem{
				Card:      card,
				Structure: structure,
				Meaning:   entry.Explanation,
				Example:   entry.Question,
			})
		case item.CategoryVocabulary:
			word, reading := extractVocabulary(entry.Question, entry.CorrectAnswer)
			if word == "" || vocabularyExists(existing[item.CategoryVocabulary], word) {
				continue
			}
			meaning := entry.Explanation
			if meaning == "" {
				meaning = entry.CorrectAnswer
			}
			items = append(items, item.VocabularyItem{
				Card:    card,
				Word:    word,
				Reading: reading,
				Meaning: meaning,
				Example: entry.Question,
			})
		case item.CategoryKanji:
			kanji := extractKanji(entry.Question, entry.CorrectAnswer)
			if kanji == "" || kanjiExists(existing[item.CategoryKanji], kanji) {
				continue
			}
			meaning := entry.Explanation
			if meaning == "" {
				meaning = entry.CorrectAnswer
			}
			items = append(items, item.KanjiItem{
				Card:    card,
				Kanji:   kanji,
				Meaning: meaning,
				Example: entry.Question,
			})
		}
	}
	return items
}

func grammarExists(pool []item.Item, structure, question string) bool {
	for _, it := range pool {
		g, ok := it.(item.GrammarItem)
		if !ok {
			continue
		}
		if g.Structure == structure {
			return true
		}
		if g.Example != "" && strings.Contains(g.Example, question) {
			return true
		}
	}
	return false
}

func vocabularyExists(pool []item.Item, word string) bool {
	for _, it := range pool {
		if v, ok := it.(item.VocabularyItem); ok && v.Word == word {
			return true
		}
	}
	return false
}

func kanjiExists(pool []item.Item, kanji string) bool {
	for _, it := range pool {
		if k, ok := it.(item.KanjiItem); ok && k.Kanji == kanji {
			return true
		}
	}
	return false
}

func extractGrammarStructure(question, answer string) string {
	for _, pattern := range []*regexp.Regexp{parenthesesPattern, japaneseQuotePattern, tildePattern} {
		if match := pattern.FindString(question); match != "" {
			return strings.Trim(match, "（）()「」『』")
		}
	}
	if answer != "" && (strings.Contains(answer, "～") || len([]rune(answer)) < 10) {
		return answer
	}
	return "文法パターン"
}

func extractVocabulary(question, answer string) (word, reading string) {
	if match := parenthesesPattern.FindStringSubmatch(question); match != nil {
		return match[1], ""
	}
	if match := parenthesesPattern.FindStringSubmatch(answer); match != nil {
		return match[1], ""
	}
	if match := kanjiReadingPattern.FindStringSubmatch(answer); match != nil {
		return match[1], match[2]
	}
	if answer != "" {
		return answer, ""
	}
	return "単語", ""
}

func extractKanji(question, answer string) string {
	source := answer
	if source == "" {
		source = question
	}
	if match := kanjiPattern.FindString(source); match != "" {
		return match
	}
	return "字"
}

func guessJLPTLevel(source string) string {
	lower := strings.ToLower(source)
	for _, level := range []string{"n5", "n4", "n3", "n2", "n1"} {
		if strings.Contains(lower, level) {
			return strings.ToUpper(level)
		}
	}
	return "N3"
}
