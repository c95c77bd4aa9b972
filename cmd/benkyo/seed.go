package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/benkyo-app/benkyo/internal/item"
)

// seedItems returns a small starter set covering every category so a fresh
// install has something to review before the first import.
func seedItems(now time.Time) []item.Item {
	return []item.Item{
		item.GrammarItem{
			Card:        item.NewCard("seed-grammar-1", "N4", now),
			Structure:   "〜ている",
			Meaning:     "ongoing action or resulting state",
			Example:     "窓が開いている。",
			Translation: "The window is open.",
		},
		item.GrammarItem{
			Card:        item.NewCard("seed-grammar-2", "N4", now),
			Structure:   "〜たい",
			Meaning:     "want to do something",
			Example:     "日本に行きたい。",
			Translation: "I want to go to Japan.",
		},
		item.VocabularyItem{
			Card:         item.NewCard("seed-vocabulary-1", "N5", now),
			Word:         "勉強",
			Reading:      "べんきょう",
			Meaning:      "study",
			Example:      "毎日日本語を勉強しています。",
			PartOfSpeech: "noun",
		},
		item.VocabularyItem{
			Card:         item.NewCard("seed-vocabulary-2", "N5", now),
			Word:         "図書館",
			Reading:      "としょかん",
			Meaning:      "library",
			Example:      "図書館で本を読んでいます。",
			PartOfSpeech: "noun",
		},
		item.KanjiItem{
			Card:    item.NewCard("seed-kanji-1", "N5", now),
			Kanji:   "本",
			Onyomi:  "ホン",
			Kunyomi: "もと",
			Meaning: "book, origin",
			Example: "本を読む",
		},
		item.ContrastItem{
			Card:       item.NewCard("seed-contrast-1", "N4", now),
			StructureA: "〜ている",
			StructureB: "〜てある",
			ExampleA:   "窓が開いている。",
			ExampleB:   "窓が開けてある。",
			Comparison: "ている describes an ongoing state; てある describes a state someone prepared on purpose",
		},
		item.ContrastItem{
			Card:       item.NewCard("seed-contrast-2", "N4", now),
			StructureA: "〜たい",
			StructureB: "〜てほしい",
			ExampleA:   "日本に行きたい。",
			ExampleB:   "日本に来てほしい。",
			Comparison: "たい is the speaker's own wish; てほしい asks someone else to do it",
		},
	}
}

func newDataSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill an empty store with sample items for trying the app out",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			repo, closeDB, err := openRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			st, err := loadStore(ctx, repo)
			if err != nil {
				return err
			}
			if len(st.AllItems()) > 0 {
				return fmt.Errorf("store already contains items; run 'data clear' first")
			}

			items := seedItems(time.Now())
			st.AddItems(items...)
			if err := repo.Save(ctx, st.Snapshot()); err != nil {
				return fmt.Errorf("repo.Save() > %w", err)
			}

			fmt.Printf("Seeded %d sample items.\n", len(items))
			return nil
		},
	}
}
