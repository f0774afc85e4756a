package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookedbarber/dashcache/config"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "dashcache",
		Short:   "Caching and prefetching daemon for BookedBarber dashboards",
		Version: version,
	}

	socket := root.PersistentFlags().String("socket", config.Default().Admin.Socket,
		"admin socket of a running daemon")

	root.AddCommand(
		newServeCmd(),
		newStatsCmd(socket),
		newClearCmd(socket),
		newGetCmd(socket),
		newBenchCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
