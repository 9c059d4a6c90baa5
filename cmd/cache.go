package cmd

import (
	"fmt"

	"audiochan/cache"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the shared genre cache in Redis",
}

var cachePingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the Redis connection with a read/write round trip",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connectCache(cmd)
		if err != nil {
			return err
		}
		defer cache.CloseRedis()

		if err := cache.CheckRedis(cmd.Context(), client); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "redis %s:%s db %d ok\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)
		return nil
	},
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Drop cached genres",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connectCache(cmd)
		if err != nil {
			return err
		}
		defer cache.CloseRedis()

		n, err := cache.NewRedisGenreCache(client, cfg.GenreCacheTTL).Flush(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d keys\n", n)
		return nil
	},
}

func connectCache(cmd *cobra.Command) (*redis.Client, error) {
	if !cfg.RedisEnabled() {
		return nil, fmt.Errorf("REDIS_HOST is not set")
	}
	return cache.ConnectRedis(cmd.Context(), cfg)
}

func init() {
	cacheCmd.AddCommand(cachePingCmd, cacheFlushCmd)
	rootCmd.AddCommand(cacheCmd)
}
