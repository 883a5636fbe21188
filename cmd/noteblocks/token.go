package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/deyanlaf0409/noteblocks/pkg/adapters/rest"
)

var (
	tokenSecret   string
	tokenUsername string
	tokenTTL      time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <account>",
	Short: "Issue a bearer token for the development server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		secret := tokenSecret
		if secret == "" {
			secret = os.Getenv("NOTEBLOCKS_SECRET")
		}
		if secret == "" {
			fatal("Missing signing secret", errors.New("set --secret or NOTEBLOCKS_SECRET"))
		}
		username := tokenUsername
		if username == "" {
			username = args[0]
		}

		token, err := rest.IssueToken([]byte(secret), args[0], username, tokenTTL)
		if err != nil {
			fatal("Failed to issue token", err)
		}
		fmt.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "Token signing secret (or NOTEBLOCKS_SECRET)")
	tokenCmd.Flags().StringVar(&tokenUsername, "username", "", "Display name (default: the account id)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
}
