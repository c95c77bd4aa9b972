package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/benkyo-app/benkyo/internal/datasync"
)

func newImportCommand() *cobra.Command {
	importCommand := &cobra.Command{
		Use:   "import",
		Short: "Import study material from spreadsheet files",
	}

	importCommand.AddCommand(newImportWorkbookCommand())
	importCommand.AddCommand(newImportErrorLogCommand())

	return importCommand
}

func newImportWorkbookCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "workbook [file]",
		Short: "Import grammar, vocabulary, kanji and contrast sheets from an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			items, result, err := datasync.ImportWorkbook(args[0], time.Now())
			if err != nil {
				return fmt.Errorf("datasync.ImportWorkbook() > %w", err)
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
			st.AddItems(items...)
			if err := repo.Save(ctx, st.Snapshot()); err != nil {
				return fmt.Errorf("repo.Save() > %w", err)
			}

			fmt.Println("\nImport Summary:")
			fmt.Printf("  Grammar:    %d new\n", result.GrammarNew)
			fmt.Printf("  Vocabulary: %d new\n", result.VocabularyNew)
			fmt.Printf("  Kanji:      %d new\n", result.KanjiNew)
			fmt.Printf("  Contrast:   %d new\n", result.ContrastNew)
			fmt.Printf("  Skipped:    %d rows\n", result.RowsSkipped)
			return nil
		},
	}
}

func newImportErrorLogCommand() *cobra.Command {
	var sheet string

	command := &cobra.Command{
		Use:   "errorlog [file]",
		Short: "Import an error log sheet and convert mistakes into review items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			now := time.Now()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			entries, result, err := datasync.ImportErrorLog(args[0], sheet, now)
			if err != nil {
				return fmt.Errorf("datasync.ImportErrorLog() > %w", err)
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

			newItems := datasync.ConvertErrorLogToItems(entries, st.ItemsByCategory(), now)
			st.AddItems(newItems...)
			for _, entry := range entries {
				st.AppendErrorLog(entry)
			}
			if err := repo.Save(ctx, st.Snapshot()); err != nil {
				return fmt.Errorf("repo.Save() > %w", err)
			}

			fmt.Println("\nImport Summary:")
			fmt.Printf("  Error log entries: %d imported, %d rows skipped\n", result.Imported, result.RowsSkipped)
			fmt.Printf("  New review items:  %d\n", len(newItems))
			return nil
		},
	}

	command.Flags().StringVar(&sheet, "sheet", "", "Sheet name to read (defaults to the first sheet)")

	return command
}
