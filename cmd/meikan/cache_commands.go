package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"meikan/internal/verifycache"
)

func newCacheCommand(cctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the persistent verification cache",
	}

	cacheCmd.AddCommand(newCacheShowCommand(cctx))
	cacheCmd.AddCommand(newCacheClearCommand(cctx))

	return cacheCmd
}

func newCacheShowCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show verification cache status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:            %s\n", cfg.VerifyCache.Path)
			fmt.Fprintf(out, "Enabled:         %s\n", yesNo(cfg.VerifyCache.Enabled))
			fmt.Fprintf(out, "Store not-found: %s\n", yesNo(cfg.VerifyCache.StoreNotFound))

			cache := verifycache.NewCache(cfg.VerifyCache.Path, cfg.VerifyCache.StoreNotFound, nil)
			fmt.Fprintf(out, "Entries:         %d\n", cache.Count())
			return nil
		},
	}
}

func newCacheClearCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached verification outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			cache := verifycache.NewCache(cfg.VerifyCache.Path, cfg.VerifyCache.StoreNotFound, nil)
			count := cache.Count()
			if err := cache.Clear(); err != nil {
				return fmt.Errorf("clear verification cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached entries\n", count)
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
