// Copyright Szymon Zygula, 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/szymon-zygula/egrapsa/internal/cache"
	"github.com/szymon-zygula/egrapsa/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the source cache",
	Long: `Fetched CTS passages are kept in a SQLite cache (source.cache_dir) so
repeated conversions do not hit the network.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached works",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "IDENTIFIER\tBYTES\tFETCHED\tBLAKE3")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Identifier, e.Size, e.FetchedAt.Format(time.DateTime), e.Hash[:16])
		}
		return tw.Flush()
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge [identifiers...]",
	Short: "Remove cached works (all when none are named)",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Purge(args...)
		if err != nil {
			return err
		}
		fmt.Printf("purged %d cached work(s) from %s\n", n, store.Dir())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() (*cache.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Source.CacheDir == "" {
		return nil, &types.ConfigError{Message: "source.cache_dir is not set"}
	}
	return cache.Open(cfg.Source.CacheDir)
}
