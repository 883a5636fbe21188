package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deyanlaf0409/noteblocks"
)

var (
	loginRemote  string
	loginAccount string
	loginToken   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Link the local collection to an account",
	Long: `Merge the local collection with the account's server data, keeping one copy
of every note id, and push the union back in the background. The account is saved
in noteblocks.yaml so later commands sync their changes.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		opts := []noteblocks.Option{noteblocks.WithAccount("", loginToken)}
		if loginRemote != "" {
			opts = append(opts, noteblocks.WithRemote(loginRemote))
		}
		client, done := openClient(ctx, opts...)
		defer done()

		out, err := client.Login(ctx, loginAccount)
		if err != nil {
			fatal("Failed to link account", err)
		}
		if err := noteblocks.SaveConfig(client.Dir(), client.Config()); err != nil {
			fatal("Failed to save config", err)
		}

		fmt.Printf("Linked to %s: %d note(s), %d folder(s)", out.Username, out.Notes, out.Folders)
		if out.Collisions > 0 {
			fmt.Printf(", %d duplicate id(s) resolved to the server copy", out.Collisions)
		}
		fmt.Println(".")
		if out.SkippedServer > 0 {
			fmt.Fprintf(os.Stderr, "warning: %d unreadable server record(s) skipped\n", out.SkippedServer)
		}

		report, err := client.Merger.Wait(ctx)
		if err != nil {
			fatal("Failed to push local data", err)
		}
		for _, f := range report.Failures {
			fmt.Fprintf(os.Stderr, "warning: push %s %s: %v\n", f.Kind, f.ID, f.Err)
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Unlink the account; local notes are kept",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, done := openClient(ctx)
		defer done()

		client.Logout()
		if err := noteblocks.SaveConfig(client.Dir(), client.Config()); err != nil {
			fatal("Failed to save config", err)
		}
		fmt.Println("Logged out. Changes stay local until the next login.")
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)
	loginCmd.Flags().StringVar(&loginRemote, "remote", "", "Remote service URL")
	loginCmd.Flags().StringVar(&loginAccount, "account", "", "Account id")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Bearer token (see 'noteblocks token')")
	loginCmd.MarkFlagRequired("account")
}
