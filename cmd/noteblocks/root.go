package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/deyanlaf0409/noteblocks"
	"github.com/deyanlaf0409/noteblocks/pkg/reconcile"
)

var (
	verbose bool
	dataDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "noteblocks",
	Short: "A local-first note engine with background account sync",
	Long: `Noteblocks keeps your notes in a local data directory and applies every change
immediately. When an account is linked, changes are sent to the remote service in the
background; failures are reported but never block you.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "dir", "d", "", "Data directory (default: nearest .noteblocks)")
}

// resolveDir returns the --dir flag, the nearest data directory above the working
// directory, or ./.noteblocks.
func resolveDir() string {
	if dataDir != "" {
		return dataDir
	}
	cwd, err := os.Getwd()
	if err != nil {
		fatal("Failed to get CWD", err)
	}
	root, err := noteblocks.FindRoot(cwd)
	if errors.Is(err, noteblocks.ErrNoRoot) {
		return filepath.Join(cwd, noteblocks.DataDir)
	}
	if err != nil {
		fatal("Failed to find data directory", err)
	}
	return root
}

// openClient opens the data directory and returns a func that settles pending remote
// work and closes the client.
func openClient(ctx context.Context, opts ...noteblocks.Option) (*noteblocks.Client, func()) {
	opts = append([]noteblocks.Option{
		noteblocks.WithLogger(slog.Default()),
		noteblocks.WithNoticeHandler(func(r reconcile.Result) {
			fmt.Fprintf(os.Stderr, "warning: %s\n", r)
		}),
	}, opts...)

	client, err := noteblocks.New(ctx, resolveDir(), opts...)
	if err != nil {
		fatal("Failed to open data directory", err)
	}
	return client, func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
}
