package session

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/benkyo-app/benkyo/internal/item"
)

// maxDistractors caps the number of wrong options shown next to the correct one.
const maxDistractors = 3

// Question is one multiple-choice question presented during a session.
type Question struct {
	ItemID        string
	Category      item.Category
	Prompt        string
	Subtext       string
	CorrectAnswer string
	Options       []string
	Explanation   string
}

// Pool is an immutable snapshot of items used to draw distractors. Taking a
// snapshot at session start keeps question generation stable even if the
// underlying collections change mid-session.
type Pool map[item.Category][]item.Item

// GenerateQuestion builds a question for one item. Distractors come from other
// items of the same category and difficulty level; when the pool cannot supply
// three, the question degrades to fewer options, down to a single correct
// option, rather than failing.
func GenerateQuestion(it item.Item, pool Pool, rng *rand.Rand) Question {
	switch v := it.(type) {
	case item.GrammarItem:
		return grammarQuestion(v, pool[item.CategoryGrammar], rng)
	case item.VocabularyItem:
		return vocabularyQuestion(v, pool[item.CategoryVocabulary], rng)
	case item.KanjiItem:
		return kanjiQuestion(v, pool[item.CategoryKanji], rng)
	case item.ContrastItem:
		return contrastQuestion(v, rng)
	}
	// Unknown variant: fall back to a degenerate question on the card alone.
	card := it.Schedule()
	return Question{
		ItemID:        card.ID,
		Category:      it.Category(),
		Prompt:        card.ID,
		CorrectAnswer: card.ID,
		Options:       []string{card.ID},
	}
}

func grammarQuestion(g item.GrammarItem, pool []item.Item, rng *rand.Rand) Question {
	var candidates []string
	for _, other := range pool {
		o, ok := other.(item.GrammarItem)
		if !ok || o.ID == g.ID || o.Level != g.Level {
			continue
		}
		candidates = append(candidates, o.Structure)
	}

	return Question{
		ItemID:        g.ID,
		Category:      item.CategoryGrammar,
		Prompt:        blankOut(g.Example, g.Structure, g.Meaning),
		CorrectAnswer: g.Structure,
		Options:       buildOptions(g.Structure, candidates, rng),
		Explanation:   g.Meaning,
	}
}

func vocabularyQuestion(v item.VocabularyItem, pool []item.Item, rng *rand.Rand) Question {
	var candidates []string
	for _, other := range pool {
		o, ok := other.(item.VocabularyItem)
		if !ok || o.ID == v.ID || o.Level != v.Level {
			continue
		}
		candidates = append(candidates, o.Meaning)
	}

	return Question{
		ItemID:        v.ID,
		Category:      item.CategoryVocabulary,
		Prompt:        v.Word,
		Subtext:       v.Reading,
		CorrectAnswer: v.Meaning,
		Options:       buildOptions(v.Meaning, candidates, rng),
		Explanation:   v.Example,
	}
}

func kanjiQuestion(k item.KanjiItem, pool []item.Item, rng *rand.Rand) Question {
	var candidates []string
	for _, other := range pool {
		o, ok := other.(item.KanjiItem)
		if !ok || o.ID == k.ID || o.Level != k.Level {
			continue
		}
		candidates = append(candidates, o.Meaning)
	}

	return Question{
		ItemID:        k.ID,
		Category:      item.CategoryKanji,
		Prompt:        k.Kanji,
		Subtext:       fmt.Sprintf("%s / %s", k.Onyomi, k.Kunyomi),
		CorrectAnswer: k.Meaning,
		Options:       buildOptions(k.Meaning, candidates, rng),
		Explanation:   k.Example,
	}
}

// contrastQuestion quizzes one side of the pair against the other. The pair
// itself supplies the distractor, so the pool is not consulted.
func contrastQuestion(c item.ContrastItem, rng *rand.Rand) Question {
	correct, wrong, example := c.StructureA, c.StructureB, c.ExampleA
	if rng.Intn(2) == 1 {
		correct, wrong, example = c.StructureB, c.StructureA, c.ExampleB
	}

	return Question{
		ItemID:        c.ID,
		Category:      item.CategoryContrast,
		Prompt:        blankOut(example, correct, c.Comparison),
		CorrectAnswer: correct,
		Options:       buildOptions(correct, []string{wrong}, rng),
		Explanation:   c.Comparison,
	}
}

// blankOut replaces the answer inside the example sentence with a blank. When
// the example is missing, the fallback prompt is used instead.
func blankOut(example, answer, fallback string) string {
	if example == "" {
		if fallback != "" {
			return fallback
		}
		return "___"
	}
	if answer != "" && strings.Contains(example, answer) {
		return strings.Replace(example, answer, "___", 1)
	}
	return example
}

// buildOptions dedupes the candidate distractors against the correct answer,
// draws up to maxDistractors uniformly, and shuffles the final option set.
func buildOptions(correct string, candidates []string, rng *rand.Rand) []string {
	seen := map[string]struct{}{correct: {}}
	var distractors []string
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		distractors = append(distractors, candidate)
	}

	rng.Shuffle(len(distractors), func(i, j int) {
		distractors[i], distractors[j] = distractors[j], distractors[i]
	})
	if len(distractors) > maxDistractors {
		distractors = distractors[:maxDistractors]
	}

	options := append([]string{correct}, distractors...)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}
