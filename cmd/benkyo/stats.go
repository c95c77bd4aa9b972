package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/benkyo-app/benkyo/internal/item"
	"github.com/benkyo-app/benkyo/internal/stats"
)

func newStatsCommand() *cobra.Command {
	statsCommand := &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics",
	}

	statsCommand.AddCommand(newStatsDueCommand())
	statsCommand.AddCommand(newStatsStreakCommand())
	statsCommand.AddCommand(newStatsDailyCommand())
	statsCommand.AddCommand(newStatsErrorsCommand())

	return statsCommand
}

func newStatsDueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "Show how many items are due for review per category",
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

			counts := stats.CountDue(st.ItemsByCategory(), time.Now())
			fmt.Println("Due for review:")
			for _, category := range item.Categories() {
				fmt.Printf("  %-12s %d\n", category, counts.ByCategory(category))
			}
			fmt.Printf("  %-12s %d\n", "total", counts.Total)
			return nil
		},
	}
}

func newStatsStreakCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the current consecutive-day review streak",
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

			streak := stats.Streak(st.ReviewEvents(), time.Now())
			switch streak {
			case 0:
				fmt.Println("No review yet today. Streak: 0 days.")
			case 1:
				fmt.Println("Streak: 1 day.")
			default:
				fmt.Printf("Streak: %d days.\n", streak)
			}
			return nil
		},
	}
}

func newStatsDailyCommand() *cobra.Command {
	var days int

	command := &cobra.Command{
		Use:   "daily",
		Short: "Show correct answers per day and category",
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

			buckets := stats.DailyBuckets(st.ReviewEvents(), days, time.Now())
			fmt.Printf("%-12s", "date")
			for _, category := range item.Categories() {
				fmt.Printf(" %10s", category)
			}
			fmt.Println()
			for _, bucket := range buckets {
				fmt.Printf("%-12s", bucket.Date.Format("2006-01-02"))
				for _, category := range item.Categories() {
					fmt.Printf(" %10d", bucket.Counts[category])
				}
				fmt.Println()
			}
			return nil
		},
	}

	command.Flags().IntVar(&days, "days", 7, "Number of days to show")

	return command
}

func newStatsErrorsCommand() *cobra.Command {
	var limit int

	command := &cobra.Command{
		Use:   "errors",
		Short: "Show the most frequently missed items",
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

			ranks := stats.RankErrors(st.ErrorLog(), limit)
			if len(ranks) == 0 {
				fmt.Println("No errors recorded.")
				return nil
			}

			fmt.Println("Most frequently missed:")
			for i, rank := range ranks {
				fmt.Printf("%2d. [%s] %s (%d misses, last %s)\n",
					i+1, rank.Category, rank.Question, rank.Count, rank.LastDate.Format("2006-01-02"))
			}
			return nil
		},
	}

	command.Flags().IntVar(&limit, "limit", stats.DefaultRankLimit, "Maximum number of rows to show")

	return command
}
