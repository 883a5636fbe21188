package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchPattern string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print changes made to the data files by other processes",
	Long: `Watch the data directory (fs storage only) and print every change to the
collections matching --pattern until interrupted. Reminders of the loaded notes fire
while the command runs.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client, done := openClient(ctx)
		defer done()

		src, err := client.WatchSource(ctx, watchPattern)
		if err != nil {
			fatal("Failed to watch data directory", err)
		}
		if err := src.Start(ctx); err != nil {
			fatal("Failed to start watcher", err)
		}

		fmt.Printf("Watching %s (Ctrl+C to stop)\n", client.Dir())
		for e := range src.Events() {
			fmt.Println(e)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchPattern, "pattern", "*", "Collections to watch (glob)")
}
