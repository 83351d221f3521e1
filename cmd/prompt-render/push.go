package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aescanero/dago-node-prompt/internal/prompt"
	"github.com/aescanero/dago-node-prompt/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	pushBlocksPath string
	pushRedisAddr  string
	pushRedisDB    int
	pushPrefix     string
	pushTTL        time.Duration
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Store block definitions in Redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pushBlocksPath == "" {
			return fmt.Errorf("--blocks is required")
		}

		blocks, err := loadBlocks(pushBlocksPath)
		if err != nil {
			return err
		}

		client := redis.NewClient(&redis.Options{Addr: pushRedisAddr, DB: pushRedisDB})
		defer client.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		blockStore := store.NewRedisBlockStore(client, pushPrefix, pushTTL, logger)
		for _, b := range blocks {
			if b.ID == "" {
				b.ID = prompt.NewBlockID()
			}
			if err := blockStore.Save(ctx, b); err != nil {
				return fmt.Errorf("block %q: %w", b.Name, err)
			}
			logger.Info("block stored", zap.String("id", b.ID.String()), zap.String("name", b.Name))
			fmt.Fprintln(cmd.OutOrStdout(), b.ID)
		}
		return nil
	},
}

func init() {
	pushCmd.Flags().StringVarP(&pushBlocksPath, "blocks", "b", "", "Block definition file (YAML or JSON)")
	pushCmd.Flags().StringVar(&pushRedisAddr, "redis", "localhost:6379", "Redis address")
	pushCmd.Flags().IntVar(&pushRedisDB, "db", 0, "Redis database")
	pushCmd.Flags().StringVar(&pushPrefix, "prefix", "prompt:block:", "Block key prefix")
	pushCmd.Flags().DurationVar(&pushTTL, "ttl", 0, "Block expiry, 0 keeps blocks forever")
}
