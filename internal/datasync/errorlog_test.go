package datasync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benkyo-app/benkyo/internal/item"
)

func TestParseErrorLogRows(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	header := []string{"No.", "Date", "Source", "Part", "Passage or Question (short)", "Your answer", "Correct answer", "Explain error reason", "SRS?", "Planned review date", "Status", "Notes"}

	tests := []struct {
		name         string
		rows         [][]string
		wantImported int
		wantSkipped  int
		check        func(t *testing.T, entries []item.ErrorLogEntry)
	}{
		{
			name: "full row with DD/MM/YYYY date",
			rows: [][]string{
				header,
				{"1", "15/06/2025", "JLPT N3 mock", "Grammar", "寝坊した（　）遅刻した", "せいで", "ばかりに", "ばかりに expresses regret", "Yes", "20/06/2025", "New", "review again"},
			},
			wantImported: 1,
			check: func(t *testing.T, entries []item.ErrorLogEntry) {
				entry := entries[0]
				assert.Equal(t, item.CategoryGrammar, entry.Category)
				assert.Equal(t, "寝坊した（　）遅刻した", entry.Question)
				assert.Equal(t, "せいで", entry.UserAnswer)
				assert.Equal(t, "ばかりに", entry.CorrectAnswer)
				assert.True(t, entry.NeedsSRS)
				assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), entry.Date)
				assert.Equal(t, "2025-06-20T00:00:00Z", entry.PlannedReviewDate)
				assert.NotEmpty(t, entry.ID)
			},
		},
		{
			name: "vietnamese headers",
			rows: [][]string{
				{"Ngày", "Nguồn", "Phần", "Câu hỏi", "Câu trả lời của bạn", "Đáp án đúng", "Giải thích", "SRS?", "Trạng thái"},
				{"01/06/2025", "Đề N2", "Từ vựng", "（把握）する", "はあく", "はあく", "", "có", ""},
			},
			wantImported: 1,
			check: func(t *testing.T, entries []item.ErrorLogEntry) {
				entry := entries[0]
				assert.Equal(t, item.CategoryVocabulary, entry.Category)
				assert.True(t, entry.NeedsSRS)
				assert.Equal(t, "New", entry.Status)
			},
		},
		{
			name: "excel serial date",
			rows: [][]string{
				header,
				{"1", "45818", "N3", "Kanji", "この字は何ですか", "犬", "猫", "", "no", "", "New", ""},
			},
			wantImported: 1,
			check: func(t *testing.T, entries []item.ErrorLogEntry) {
				// 45818 days after 1899-12-30 is 2025-06-10.
				assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), entries[0].Date)
				assert.False(t, entries[0].NeedsSRS)
			},
		},
		{
			name: "rows without question or with unmapped part are skipped",
			rows: [][]string{
				header,
				{"1", "15/06/2025", "N3", "Grammar", "", "a", "b"},
				{"2", "15/06/2025", "N3", "Listening", "聞き取り問題", "a", "b"},
			},
			wantSkipped: 2,
		},
		{
			name: "unparseable date falls back to now",
			rows: [][]string{
				header,
				{"1", "someday", "N3", "Grammar", "質問", "a", "b"},
			},
			wantImported: 1,
			check: func(t *testing.T, entries []item.ErrorLogEntry) {
				assert.Equal(t, now, entries[0].Date)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, result := ParseErrorLogRows(tt.rows, now)
			assert.Equal(t, tt.wantImported, result.Imported)
			assert.Equal(t, tt.wantSkipped, result.RowsSkipped)
			require.Len(t, entries, tt.wantImported)
			if tt.check != nil {
				tt.check(t, entries)
			}
		})
	}
}

func TestNormalizePart(t *testing.T) {
	tests := []struct {
		part    string
		want    item.Category
		wantErr bool
	}{
		{part: "Grammar", want: item.CategoryGrammar},
		{part: "ngữ pháp N3", want: item.CategoryGrammar},
		{part: "Vocab", want: item.CategoryVocabulary},
		{part: "từ vựng", want: item.CategoryVocabulary},
		{part: "Kanji", want: item.CategoryKanji},
		{part: "chữ hán", want: item.CategoryKanji},
		{part: "Contrast", want: item.CategoryContrast},
		{part: "Reading", wantErr: true},
		{part: "Listening", wantErr: true},
		{part: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.part, func(t *testing.T) {
			got, err := normalizePart(tt.part)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertErrorLogToItems(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	logDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	entries := []item.ErrorLogEntry{
		{
			Category:      item.CategoryGrammar,
			Question:      "寝坊した（ばかりに）遅刻した",
			CorrectAnswer: "ばかりに",
			Explanation:   "expresses a regrettable result",
			Source:        "JLPT N2 mock",
			Status:        "New",
			NeedsSRS:      true,
			Date:          logDate,
		},
		{
			Category:      item.CategoryVocabulary,
			Question:      "彼の意図をはあくする",
			CorrectAnswer: "把握はあく",
			Explanation:   "to grasp, to understand",
			Source:        "reading drill",
			Status:        "New",
			NeedsSRS:      true,
			Date:          logDate,
		},
		// Resolved and non-SRS entries are ignored.
		{Category: item.CategoryGrammar, Question: "done", NeedsSRS: true, Status: "Done"},
		{Category: item.CategoryGrammar, Question: "no srs", NeedsSRS: false, Status: "New"},
	}

	items := ConvertErrorLogToItems(entries, nil, now)
	require.Len(t, items, 2)

	grammar, ok := items[0].(item.GrammarItem)
	require.True(t, ok)
	assert.Equal(t, "ばかりに", grammar.Structure)
	assert.Equal(t, "expresses a regrettable result", grammar.Meaning)
	assert.Equal(t, "N2", grammar.Level)
	assert.Equal(t, 0, grammar.SRSLevel)
	assert.Equal(t, 1, grammar.ErrorCount)
	assert.Equal(t, []string{"expresses a regrettable result"}, grammar.ErrorReasons)
	assert.Equal(t, now.Format(time.RFC3339), grammar.NextReviewDate)
	assert.Equal(t, logDate, grammar.CreatedAt)

	vocab, ok := items[1].(item.VocabularyItem)
	require.True(t, ok)
	assert.Equal(t, "把握", vocab.Word)
	assert.Equal(t, "はあく", vocab.Reading)
	// Source without an N-level falls back to N3.
	assert.Equal(t, "N3", vocab.Level)
}

func TestConvertErrorLogToItems_SkipsDuplicates(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	existing := map[item.Category][]item.Item{
		item.CategoryGrammar: {item.GrammarItem{
			Card:      item.Card{ID: "g1"},
			Structure: "ばかりに",
		}},
		item.CategoryVocabulary: {item.VocabularyItem{
			Card: item.Card{ID: "v1"},
			Word: "把握",
		}},
	}

	entries := []item.ErrorLogEntry{
		{Category: item.CategoryGrammar, Question: "（ばかりに）", CorrectAnswer: "ばかりに", NeedsSRS: true, Status: "New", Date: now},
		{Category: item.CategoryVocabulary, Question: "（把握）", CorrectAnswer: "把握", NeedsSRS: true, Status: "New", Date: now},
	}

	assert.Empty(t, ConvertErrorLogToItems(entries, existing, now))
}

func TestConvertErrorLogToItems_UsesPlannedReviewDate(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	entries := []item.ErrorLogEntry{
		{
			Category:          item.CategoryKanji,
			Question:          "読み方は？",
			CorrectAnswer:     "犬",
			NeedsSRS:          true,
			Status:            "New",
			PlannedReviewDate: "2025-06-20T00:00:00Z",
			Date:              now,
		},
	}

	items := ConvertErrorLogToItems(entries, nil, now)
	require.Len(t, items, 1)
	assert.Equal(t, "2025-06-20T00:00:00Z", items[0].Schedule().NextReviewDate)

	kanji, ok := items[0].(item.KanjiItem)
	require.True(t, ok)
	assert.Equal(t, "犬", kanji.Kanji)
	// Empty explanation falls back to the correct answer.
	assert.Equal(t, "犬", kanji.Meaning)
}

func TestExtractGrammarStructure(t *testing.T) {
	tests := []struct {
		name     string
		question string
		answer   string
		want     string
	}{
		{name: "parentheses", question: "寝坊した（ばかりに）遅刻した", want: "ばかりに"},
		{name: "japanese quotes", question: "「に違いない」の使い方", want: "に違いない"},
		{name: "tilde pattern", question: "～ながらの例文", want: "～ながら"},
		{name: "short answer fallback", question: "no pattern here", answer: "ばかりに", want: "ばかりに"},
		{name: "default", question: "no pattern here", answer: "this answer is far too long to be a grammar pattern", want: "文法パターン"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractGrammarStructure(tt.question, tt.answer))
		})
	}
}

func TestGuessJLPTLevel(t *testing.T) {
	assert.Equal(t, "N2", guessJLPTLevel("JLPT N2 mock test"))
	assert.Equal(t, "N5", guessJLPTLevel("beginner n5 drill"))
	assert.Equal(t, "N3", guessJLPTLevel("textbook chapter 4"))
}
