package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benkyo-app/benkyo/internal/cloud"
	"github.com/benkyo-app/benkyo/internal/config"
	"github.com/benkyo-app/benkyo/internal/item"
	"github.com/benkyo-app/benkyo/internal/store"
)

func newSyncCommand() *cobra.Command {
	syncCommand := &cobra.Command{
		Use:   "sync",
		Short: "Mirror local data to and from the cloud backup",
	}

	syncCommand.AddCommand(newSyncPushCommand())
	syncCommand.AddCommand(newSyncPullCommand())

	return syncCommand
}

func newCloudClient(cfg *config.Config) (*cloud.Client, error) {
	if cfg.Cloud.BaseURL == "" || cfg.Cloud.UserID == "" {
		return nil, fmt.Errorf("cloud.base_url and cloud.user_id must be configured for sync")
	}
	return cloud.NewClient(
		cfg.Cloud.BaseURL,
		cfg.Cloud.APIKey,
		cfg.Cloud.UserID,
		uint(cfg.Cloud.RetryAttempts),
	), nil
}

func snapshotCounts(snap store.Snapshot) string {
	itemCount := 0
	for _, items := range snap.Items {
		itemCount += len(items)
	}
	return fmt.Sprintf("%d items, %d review events, %d error log entries",
		itemCount, len(snap.ReviewEvents), len(snap.ErrorLog))
}

func newSyncPushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Upload the local state to the cloud backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := newCloudClient(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			repo, closeDB, err := openRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			snap, err := repo.Load(ctx)
			if err != nil {
				return fmt.Errorf("repo.Load() > %w", err)
			}

			if err := client.Push(ctx, snap); err != nil {
				return fmt.Errorf("client.Push() > %w", err)
			}

			fmt.Printf("Pushed %s.\n", snapshotCounts(snap))
			return nil
		},
	}
}

func newSyncPullCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Replace the local state with the cloud backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := newCloudClient(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			snap, err := client.Pull(ctx)
			if err != nil {
				return fmt.Errorf("client.Pull() > %w", err)
			}

			repo, closeDB, err := openRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repo.Save(ctx, snap); err != nil {
				return fmt.Errorf("repo.Save() > %w", err)
			}

			fmt.Printf("Pulled %s.\n", snapshotCounts(snap))
			for _, category := range item.Categories() {
				if n := len(snap.Items[category]); n > 0 {
					fmt.Printf("  %-12s %d\n", category, n)
				}
			}
			return nil
		},
	}
}
