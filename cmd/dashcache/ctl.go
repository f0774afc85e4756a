package main

// Client-side subcommands: thin wrappers over the daemon's admin socket.

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookedbarber/dashcache/admin"
)

func newStatsCmd(socket *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics of a running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := admin.NewClient(*socket).Stats()
			if err != nil {
				return err
			}
			fmt.Printf("entries    : %d\n", s.Entries)
			fmt.Printf("bytes      : %d / %d (%.1f%%)\n", s.Bytes, s.BudgetBytes, s.UsagePct)
			fmt.Printf("hits       : %d\n", s.Hits)
			fmt.Printf("misses     : %d\n", s.Misses)
			fmt.Printf("hit rate   : %.1f%%\n", s.HitRate*100)
			fmt.Printf("evictions  : %d\n", s.Evictions)
			fmt.Printf("expired    : %d\n", s.Expirations)
			fmt.Printf("prefetched : %d\n", s.Prefetches)
			return nil
		},
	}
}

func newClearCmd(socket *string) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the cache, or one category of it",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := admin.NewClient(*socket).Clear(category)
			if err != nil {
				return err
			}
			fmt.Printf("removed %d entries\n", removed)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "",
		"only clear this category (appointments, staff, analytics, ui-state, api-response)")
	return cmd
}

func newGetCmd(socket *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Fetch one payload through the daemon's cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := admin.NewClient(*socket).Get(args[0])
			if err != nil {
				return err
			}
			fmt.Println(string(v))
			return nil
		},
	}
}
