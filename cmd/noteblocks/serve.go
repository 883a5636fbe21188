package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"

	"github.com/deyanlaf0409/noteblocks/pkg/adapters/memory"
	"github.com/deyanlaf0409/noteblocks/pkg/adapters/rest"
)

var (
	serveAddr   string
	serveSecret string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an in-memory remote service for development",
	Long: `Serve the remote API backed by memory. Accounts are created on first use;
issue tokens for them with 'noteblocks token'. Data is lost on exit.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		secret := serveSecret
		if secret == "" {
			secret = os.Getenv("NOTEBLOCKS_SECRET")
		}
		if secret == "" {
			fatal("Missing signing secret", errors.New("set --secret or NOTEBLOCKS_SECRET"))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		handler := rest.NewServer(memory.NewGateway(), rest.ServerConfig{
			Secret: []byte(secret),
			Logger: slog.Default(),
		})
		srv := &http.Server{
			Addr:              serveAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		lifecycle.Go(ctx, func(ctx context.Context) error {
			errCh <- srv.ListenAndServe()
			return nil
		})
		fmt.Printf("Serving on %s\n", serveAddr)

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				fatal("Server failed", err)
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				fatal("Failed to shut down", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveSecret, "secret", "", "Token signing secret (or NOTEBLOCKS_SECRET)")
}
