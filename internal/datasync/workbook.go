// Package datasync imports study material from spreadsheet workbooks.
package datasync

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/benkyo-app/benkyo/internal/item"
)

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	GrammarNew    int
	VocabularyNew int
	KanjiNew      int
	ContrastNew   int
	RowsSkipped   int
}

// ImportWorkbook reads a workbook whose sheets are matched by name (grammar,
// vocabulary, kanji, contrast) and returns freshly scheduled items. Rows
// missing their key column are counted as skipped.
func ImportWorkbook(path string, now time.Time) ([]item.Item, *ImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("excelize.OpenFile(%s) > %w", path, err)
	}
	defer f.Close()

	var items []item.Item
	result := &ImportResult{}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, nil, fmt.Errorf("f.GetRows(%s) > %w", sheet, err)
		}

		name := strings.ToLower(sheet)
		switch {
		case strings.Contains(name, "grammar"):
			items = append(items, grammarRows(rows, now, result)...)
		case strings.Contains(name, "contrast"):
			items = append(items, contrastRows(rows, now, result)...)
		case strings.Contains(name, "vocab"):
			items = append(items, vocabularyRows(rows, now, result)...)
		case strings.Contains(name, "kanji"):
			items = append(items, kanjiRows(rows, now, result)...)
		}
	}

	return items, result, nil
}

// header maps lowercased column names to indices for alias-tolerant lookups.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h
}

// get returns the cell under the first matching column alias, or "".
func (h header) get(row []string, aliases ...string) string {
	for _, alias := range aliases {
		idx, ok := h[alias]
		if !ok || idx >= len(row) {
			continue
		}
		if value := strings.TrimSpace(row[idx]); value != "" {
			return value
		}
	}
	return ""
}

func grammarRows(rows [][]string, now time.Time, result *ImportResult) []item.Item {
	if len(rows) < 2 {
		return nil
	}
	h := newHeader(rows[0])

	var items []item.Item
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		structure := h.get(row, "structure")
		if structure == "" {
			result.RowsSkipped++
			continue
		}
		level := h.get(row, "level")
		if level == "" {
			level = "N5"
		}
		items = append(items, item.GrammarItem{
			Card:        item.NewCard(uuid.NewString(), level, now),
			Structure:   structure,
			Meaning:     h.get(row, "meaning"),
			Example:     h.get(row, "example"),
			Translation: h.get(row, "translation"),
			Usage:       h.get(row, "usage"),
		})
		result.GrammarNew++
	}
	return items
}

func vocabularyRows(rows [][]string, now time.Time, result *ImportResult) []item.Item {
	if len(rows) < 2 {
		return nil
	}
	h := newHeader(rows[0])

	var items []item.Item
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		word := h.get(row, "word", "vocabulary")
		if word == "" {
			result.RowsSkipped++
			continue
		}
		level := h.get(row, "level")
		if level == "" {
			level = "N5"
		}
		items = append(items, item.VocabularyItem{
			Card:         item.NewCard(uuid.NewString(), level, now),
			Word:         word,
			Reading:      h.get(row, "reading", "hiragana"),
			Meaning:      h.get(row, "meaning", "vietnamese"),
			Example:      h.get(row, "example"),
			PartOfSpeech: h.get(row, "part of speech", "type"),
		})
		result.VocabularyNew++
	}
	return items
}

func kanjiRows(rows [][]string, now time.Time, result *ImportResult) []item.Item {
	if len(rows) < 2 {
		return nil
	}
	h := newHeader(rows[0])

	var items []item.Item
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		kanji := h.get(row, "kanji", "character")
		if kanji == "" {
			result.RowsSkipped++
			continue
		}
		level := h.get(row, "level")
		if level == "" {
			level = "N5"
		}
		items = append(items, item.KanjiItem{
			Card:    item.NewCard(uuid.NewString(), level, now),
			Kanji:   kanji,
			Onyomi:  h.get(row, "onyomi", "on"),
			Kunyomi: h.get(row, "kunyomi", "kun"),
			Meaning: h.get(row, "meaning", "vietnamese"),
			Example: h.get(row, "example"),
		})
		result.KanjiNew++
	}
	return items
}

func contrastRows(rows [][]string, now time.Time, result *ImportResult) []item.Item {
	if len(rows) < 2 {
		return nil
	}
	h := newHeader(rows[0])

	var items []item.Item
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		structureA := h.get(row, "structure a")
		structureB := h.get(row, "structure b")
		if structureA == "" || structureB == "" {
			result.RowsSkipped++
			continue
		}
		level := h.get(row, "level")
		if level == "" {
			level = "N5"
		}
		items = append(items, item.ContrastItem{
			Card:       item.NewCard(uuid.NewString(), level, now),
			StructureA: structureA,
			StructureB: structureB,
			ExampleA:   h.get(row, "structure a - example (jp)", "example a"),
			ExampleB:   h.get(row, "structure b - example (jp)", "example b"),
			Comparison: h.get(row, "short comparison (when to use a vs b)", "comparison"),
		})
		result.ContrastNew++
	}
	return items
}
