package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/benkyo-app/benkyo/internal/cli"
	"github.com/benkyo-app/benkyo/internal/item"
	"github.com/benkyo-app/benkyo/internal/srs"
)

func newPracticeCommand() *cobra.Command {
	practiceCommand := &cobra.Command{
		Use:   "practice",
		Short: "Writing practice with AI feedback",
	}

	practiceCommand.AddCommand(newPracticeSentenceCommand())
	practiceCommand.AddCommand(newPracticeDiaryCommand())
	practiceCommand.AddCommand(newPracticeTopicCommand())

	return practiceCommand
}

func newPracticeSentenceCommand() *cobra.Command {
	var batchSize int

	command := &cobra.Command{
		Use:   "sentence",
		Short: "Write your own sentences with due grammar structures",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if batchSize <= 0 {
				batchSize = cfg.Review.BatchSize
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

			grammar := st.Items(item.CategoryGrammar)
			selected := srs.DueItems(grammar, time.Now())
			if len(selected) == 0 {
				selected = grammar
			}
			if len(selected) == 0 {
				fmt.Println("No grammar items to practice. Import some first.")
				return nil
			}
			if len(selected) > batchSize {
				selected = selected[:batchSize]
			}

			items := make([]item.GrammarItem, 0, len(selected))
			for _, it := range selected {
				grammarItem, ok := it.(item.GrammarItem)
				if !ok {
					continue
				}
				items = append(items, grammarItem)
			}

			openaiClient, err := newOpenAIClient(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = openaiClient.Close()
			}()

			fmt.Printf("Using OpenAI provider (model: %s)\n", cfg.OpenAI.Model)
			fmt.Printf("Practicing %d grammar structures. Type quit to stop.\n", len(items))
			practiceCLI := cli.NewPracticeCLI(openaiClient, items)
			return practiceCLI.Run(ctx)
		},
	}

	command.Flags().IntVar(&batchSize, "batch-size", 0, "Maximum structures per session (defaults to review.batch_size)")

	return command
}

func newPracticeDiaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diary",
		Short: "Write a diary entry and get line-by-line corrections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			openaiClient, err := newOpenAIClient(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = openaiClient.Close()
			}()

			diaryCLI := cli.NewDiaryCLI(openaiClient)
			return diaryCLI.Run(cmd.Context())
		},
	}
}

func newPracticeTopicCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "topic",
		Short: "Get a diary topic with guiding questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			openaiClient, err := newOpenAIClient(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = openaiClient.Close()
			}()

			topic, err := openaiClient.SuggestTopic(cmd.Context())
			if err != nil {
				return fmt.Errorf("openaiClient.SuggestTopic() > %w", err)
			}

			fmt.Printf("Today's topic: %s\n", topic.Topic)
			for _, question := range topic.Questions {
				fmt.Printf("  - %s\n", question)
			}
			if topic.Template != "" {
				fmt.Printf("Template: %s\n", topic.Template)
			}
			return nil
		},
	}
}
