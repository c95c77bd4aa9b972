// Package item defines the learnable item variants and their shared scheduling state.
package item

import (
	"encoding/json"
	"fmt"
	"time"
)

// Category identifies which kind of learnable item a value is.
type Category string

const (
	CategoryGrammar    Category = "grammar"
	CategoryVocabulary Category = "vocabulary"
	CategoryKanji      Category = "kanji"
	CategoryContrast   Category = "contrast"
)

// Categories returns all item categories in display order.
func Categories() []Category {
	return []Category{CategoryGrammar, CategoryVocabulary, CategoryKanji, CategoryContrast}
}

// ParseCategory converts a raw string into a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryGrammar, CategoryVocabulary, CategoryKanji, CategoryContrast:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown item category %q", s)
}

// Card holds the scheduling state shared by every item variant.
//
// NextReviewDate is kept as an RFC3339 string rather than a time.Time so that
// malformed values survive a load unchanged. The scheduler treats an empty or
// unparseable date as due.
type Card struct {
	ID             string   `json:"id"`
	Level          string   `json:"level,omitempty"`
	SRSLevel       int      `json:"srs_level"`
	NextReviewDate string   `json:"next_review_date,omitempty"`
	ErrorCount     int      `json:"error_count"`
	ErrorReasons   []string `json:"error_reasons,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// NewCard returns a scheduling card for a freshly imported item: level 0 and
// immediately due.
func NewCard(id, level string, now time.Time) Card {
	return Card{
		ID:             id,
		Level:          level,
		SRSLevel:       0,
		NextReviewDate: now.Format(time.RFC3339),
		CreatedAt:      now,
	}
}

// Item is the variant interface shared by all learnable items. Implementations
// use value semantics: Reschedule returns a new item and never mutates the
// receiver.
type Item interface {
	Category() Category
	Schedule() Card
	Reschedule(Card) Item
}

// GrammarItem is a grammar point.
type GrammarItem struct {
	Card
	Structure   string `json:"structure"`
	Meaning     string `json:"meaning"`
	Example     string `json:"example,omitempty"`
	Translation string `json:"translation,omitempty"`
	Usage       string `json:"usage,omitempty"`
}

func (g GrammarItem) Category() Category { return CategoryGrammar }
func (g GrammarItem) Schedule() Card     { return g.Card }
func (g GrammarItem) Reschedule(c Card) Item {
	g.Card = c
	return g
}

// VocabularyItem is a vocabulary word.
type VocabularyItem struct {
	Card
	Word         string `json:"word"`
	Reading      string `json:"reading,omitempty"`
	Meaning      string `json:"meaning"`
	Example      string `json:"example,omitempty"`
	PartOfSpeech string `json:"part_of_speech,omitempty"`
}

func (v VocabularyItem) Category() Category { return CategoryVocabulary }
func (v VocabularyItem) Schedule() Card     { return v.Card }
func (v VocabularyItem) Reschedule(c Card) Item {
	v.Card = c
	return v
}

// KanjiItem is a single kanji with its readings.
type KanjiItem struct {
	Card
	Kanji   string `json:"kanji"`
	Onyomi  string `json:"onyomi,omitempty"`
	Kunyomi string `json:"kunyomi,omitempty"`
	Meaning string `json:"meaning"`
	Example string `json:"example,omitempty"`
}

func (k KanjiItem) Category() Category { return CategoryKanji }
func (k KanjiItem) Schedule() Card     { return k.Card }
func (k KanjiItem) Reschedule(c Card) Item {
	k.Card = c
	return k
}

// ContrastItem is a pair of easily confused structures quizzed against each other.
type ContrastItem struct {
	Card
	StructureA string `json:"structure_a"`
	StructureB string `json:"structure_b"`
	ExampleA   string `json:"example_a,omitempty"`
	ExampleB   string `json:"example_b,omitempty"`
	Comparison string `json:"comparison,omitempty"`
}

func (c ContrastItem) Category() Category { return CategoryContrast }
func (c ContrastItem) Schedule() Card     { return c.Card }
func (c ContrastItem) Reschedule(card Card) Item {
	c.Card = card
	return c
}

// Unmarshal decodes a JSON payload into the concrete item type for a category.
func Unmarshal(category Category, payload []byte) (Item, error) {
	switch category {
	case CategoryGrammar:
		var g GrammarItem
		if err := json.Unmarshal(payload, &g); err != nil {
			return nil, fmt.Errorf("json.Unmarshal(grammar item) > %w", err)
		}
		return g, nil
	case CategoryVocabulary:
		var v VocabularyItem
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("json.Unmarshal(vocabulary item) > %w", err)
		}
		return v, nil
	case CategoryKanji:
		var k KanjiItem
		if err := json.Unmarshal(payload, &k); err != nil {
			return nil, fmt.Errorf("json.Unmarshal(kanji item) > %w", err)
		}
		return k, nil
	case CategoryContrast:
		var c ContrastItem
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("json.Unmarshal(contrast item) > %w", err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown item category %q", category)
}
