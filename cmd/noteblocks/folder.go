package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders",
}

var folderAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a folder",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, done := openClient(ctx)
		defer done()

		f, err := client.Reconciler.AddFolder(ctx, strings.Join(args, " "))
		if err != nil {
			fatal("Failed to create folder", err)
		}
		fmt.Println(f.ID)
	},
}

var folderListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List folders",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, done := openClient(ctx)
		defer done()

		for _, f := range client.Store.Folders() {
			fmt.Printf("%s %s (%d)\n", f.ID, f.Name, len(client.Store.NotesInFolder(f.ID)))
		}
	},
}

var folderRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a folder",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, done := openClient(ctx)
		defer done()

		f, err := client.Reconciler.RenameFolder(ctx, args[0], strings.Join(args[1:], " "))
		if err != nil {
			fatal("Failed to rename folder", err)
		}
		fmt.Printf("Folder '%s' renamed to %q.\n", f.ID, f.Name)
	},
}

var folderRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a folder; its notes are kept unfiled",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, done := openClient(ctx)
		defer done()

		unfiled, err := client.Reconciler.DeleteFolder(ctx, args[0])
		if err != nil {
			fatal("Failed to delete folder", err)
		}
		fmt.Printf("Folder '%s' deleted, %d note(s) unfiled.\n", args[0], len(unfiled))
	},
}

func init() {
	folderCmd.AddCommand(folderAddCmd, folderListCmd, folderRenameCmd, folderRemoveCmd)
	rootCmd.AddCommand(folderCmd)
}
