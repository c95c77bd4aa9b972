package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/spf13/cobra"

	"github.com/benkyo-app/benkyo/internal/analysis"
	"github.com/benkyo-app/benkyo/internal/config"
	"github.com/benkyo-app/benkyo/internal/inference"
	"github.com/benkyo-app/benkyo/internal/item"
)

func newAnalyzeCommand() *cobra.Command {
	analyzeCommand := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze review mistakes for weak points",
	}

	analyzeCommand.AddCommand(newAnalyzeReportCommand())
	analyzeCommand.AddCommand(newAnalyzeDailyCommand())

	return analyzeCommand
}

func newAnalyzeReportCommand() *cobra.Command {
	var year, month int

	command := &cobra.Command{
		Use:   "report",
		Short: "Show monthly/yearly review statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year to be specified")
			}
			if month < 0 || month > 12 {
				return fmt.Errorf("--month must be between 1 and 12")
			}

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

			snap, err := repo.Load(ctx)
			if err != nil {
				return fmt.Errorf("repo.Load() > %w", err)
			}

			report := analysis.BuildReport(snap.ReviewEvents, snap.ErrorLog, year, month)
			printReviewReport(report, year, month)
			return nil
		},
	}

	command.Flags().IntVar(&year, "year", 0, "Filter by year (e.g., 2025)")
	command.Flags().IntVar(&month, "month", 0, "Filter by month (1-12), requires --year")

	return command
}

func printReviewReport(report analysis.Report, year, month int) {
	switch {
	case month != 0:
		fmt.Printf("Review report for %04d-%02d:\n", year, month)
	case year != 0:
		fmt.Printf("Review report for %04d:\n", year)
	default:
		fmt.Println("Review report (all time):")
	}

	fmt.Printf("  Reviews:  %d (%d correct, %d wrong, %d%% accuracy)\n",
		report.TotalReviews, report.Correct, report.Wrong, report.Accuracy())
	for _, category := range item.Categories() {
		if n := report.CorrectByCategory[category]; n > 0 {
			fmt.Printf("  %-12s %d correct\n", category, n)
		}
	}

	if len(report.TopErrors) > 0 {
		fmt.Println("\nMost frequently missed:")
		for i, rank := range report.TopErrors {
			fmt.Printf("%2d. [%s] %s (%d misses)\n", i+1, rank.Category, rank.Question, rank.Count)
		}
	}
}

func newAnalyzeDailyCommand() *cobra.Command {
	var daemon bool

	command := &cobra.Command{
		Use:   "daily",
		Short: "Summarize today's mistakes with AI suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

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
			analyzer := analysis.NewAnalyzer(openaiClient)

			if !daemon {
				return runDailyAnalysis(ctx, cfg, analyzer)
			}

			scheduler := gocron.NewScheduler(time.Local)
			if _, err := scheduler.Every(1).Day().At(cfg.Analysis.DailyTime).Do(func() {
				if err := runDailyAnalysis(context.Background(), cfg, analyzer); err != nil {
					slog.Error("daily analysis failed", "error", err)
				}
			}); err != nil {
				return fmt.Errorf("scheduler.Do() > %w", err)
			}

			fmt.Printf("Daily analysis scheduled at %s. Press Ctrl+C to stop.\n", cfg.Analysis.DailyTime)
			scheduler.StartAsync()
			defer scheduler.Stop()

			ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
			defer cancel()
			<-ctx.Done()
			return nil
		},
	}

	command.Flags().BoolVar(&daemon, "daemon", false, "Keep running and analyze every day at analysis.daily_time")

	return command
}

func runDailyAnalysis(ctx context.Context, cfg *config.Config, analyzer *analysis.Analyzer) error {
	repo, closeDB, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	snap, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("repo.Load() > %w", err)
	}

	report, err := analyzer.Run(ctx, snap.ErrorLog, time.Now())
	if err != nil {
		if errors.Is(err, analysis.ErrNoErrors) {
			fmt.Println("No mistakes recorded today. Nothing to analyze.")
			return nil
		}
		return fmt.Errorf("analyzer.Run() > %w", err)
	}

	printAnalysisReport(report)
	return nil
}

func printAnalysisReport(report inference.AnalyzeErrorsResponse) {
	fmt.Println("\nToday's error analysis:")
	fmt.Printf("  %s\n", report.Summary)

	if len(report.WeakPoints) > 0 {
		fmt.Println("\nWeak points:")
		for _, point := range report.WeakPoints {
			fmt.Printf("  - %s: %s\n", point.Topic, point.Detail)
		}
	}
	if len(report.Suggestions) > 0 {
		fmt.Println("\nSuggestions:")
		for _, suggestion := range report.Suggestions {
			fmt.Printf("  - %s\n", suggestion)
		}
	}
}
