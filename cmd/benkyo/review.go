package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/benkyo-app/benkyo/internal/cli"
	"github.com/benkyo-app/benkyo/internal/item"
	"github.com/benkyo-app/benkyo/internal/notify"
	"github.com/benkyo-app/benkyo/internal/session"
	"github.com/benkyo-app/benkyo/internal/srs"
	"github.com/benkyo-app/benkyo/internal/store"
)

type categoryFlag string

func (c *categoryFlag) Set(val string) error {
	category, err := item.ParseCategory(val)
	if err != nil {
		return err
	}
	*c = categoryFlag(category)
	return nil
}

func (c *categoryFlag) String() string { return string(*c) }
func (c *categoryFlag) Type() string   { return "category" }

var _ pflag.Value = (*categoryFlag)(nil)

func newReviewCommand() *cobra.Command {
	var batchSize int
	var category categoryFlag

	command := &cobra.Command{
		Use:   "review",
		Short: "Start an interactive review session over due items",
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

			candidates := st.AllItems()
			if category != "" {
				candidates = st.Items(item.Category(category))
			}
			due := srs.DueItems(candidates, time.Now())
			if len(due) == 0 {
				fmt.Println("Nothing is due for review.")
				return nil
			}
			if len(due) > batchSize {
				due = due[:batchSize]
			}

			notifier := notify.NewTerminal(os.Stderr)
			writer := store.NewCoalescingWriter(
				time.Duration(cfg.Review.SaveQuiescenceSeconds)*time.Second,
				st.Snapshot,
				func(snap store.Snapshot) error {
					return repo.Save(ctx, snap)
				},
				notifier,
			)
			defer writer.Stop()
			st.SetOnChange(writer.Trigger)

			engine := session.NewEngine(st, nil, time.Now)
			engine.Start(due, session.Pool(st.ItemsByCategory()))

			fmt.Printf("Reviewing %d due items. Answer with the option number.\n", len(due))
			reviewCLI := cli.NewReviewCLI(engine, writer.Flush, notifier)
			return reviewCLI.Run(ctx)
		},
	}

	command.Flags().IntVar(&batchSize, "batch-size", 0, "Maximum items per session (defaults to review.batch_size)")
	command.Flags().Var(&category, "category", "Limit the session to one category (grammar, vocabulary, kanji, contrast)")

	return command
}
