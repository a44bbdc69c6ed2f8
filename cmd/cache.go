package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"portfolio/app/content"
)

func newCacheCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the redis snapshot cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Drop cached post snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Cache.RedisURL == "" {
				return errors.New("cache.redis_url is not configured")
			}
			rdb, err := content.ConnectRedis(cmd.Context(), c.cfg.Cache.RedisURL)
			if err != nil {
				return err
			}
			defer rdb.Close()

			if err := content.PurgeSnapshots(cmd.Context(), content.NewRedisCache(rdb)); err != nil {
				return fmt.Errorf("failed to purge cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache purged")
			return nil
		},
	})
	return cmd
}
