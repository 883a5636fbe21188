package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

var (
	listArchived bool
	listFolder   string
	listJSON     bool

	editText     string
	editBody     string
	editFolder   string
	editReminder string
	editClear    bool
	editLock     bool
	editUnlock   bool
)

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Create a note",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, done := openClient(ctx)
		defer done()

		n, err := client.Reconciler.CreateNote(ctx, strings.Join(args, " "))
		if err != nil {
			fatal("Failed to create note", err)
		}
		fmt.Println(n.ID)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, highlighted first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, done := openClient(ctx)
		defer done()

		var notes []core.Note
		switch {
		case listFolder != "":
			notes = client.Store.NotesInFolder(listFolder)
		case listArchived:
			notes = client.Store.Archived()
		default:
			notes = client.Store.Notes()
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(notes); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		for _, n := range notes {
			mark := " "
			if n.Highlighted {
				mark = "*"
			}
			fmt.Printf("%s %s %s\n", mark, n.ID, n.Text)
		}
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the fields of a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var reminder *time.Time
		if editReminder != "" {
			at, err := time.Parse(time.RFC3339, editReminder)
			if err != nil {
				fatal("Invalid --reminder (want RFC3339)", err)
			}
			reminder = &at
		}

		ctx := context.Background()
		client, done := openClient(ctx)
		defer done()

		flags := cmd.Flags()
		n, err := client.Reconciler.UpdateNote(ctx, args[0], func(n *core.Note) {
			if flags.Changed("text") {
				n.Text = editText
			}
			if flags.Changed("body") {
				n.Body = editBody
			}
			if flags.Changed("folder") {
				if editFolder == "" {
					n.FolderID = nil
				} else {
					folder := editFolder
					n.FolderID = &folder
				}
			}
			if reminder != nil {
				n.ReminderDate = reminder
			}
			if editClear {
				n.ReminderDate = nil
			}
			if editLock {
				n.Locked = true
			}
			if editUnlock {
				n.Locked = false
			}
		})
		if err != nil {
			fatal("Failed to update note", err)
		}
		fmt.Printf("Note '%s' updated.\n", n.ID)
	},
}

var highlightCmd = &cobra.Command{
	Use:   "highlight <id>",
	Short: "Toggle the highlight flag of a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, done := openClient(ctx)
		defer done()

		n, err := client.Reconciler.ToggleHighlight(ctx, args[0])
		if err != nil {
			fatal("Failed to toggle highlight", err)
		}
		fmt.Printf("Note '%s' highlighted: %t\n", n.ID, n.Highlighted)
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <id>...",
	Short: "Move notes to the archive",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, done := openClient(ctx)
		defer done()

		notes, err := client.Reconciler.ArchiveNotes(ctx, args...)
		if err != nil {
			fatal("Failed to archive notes", err)
		}
		fmt.Printf("Archived %d note(s).\n", len(notes))
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Move an archived note back to the active list",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, done := openClient(ctx)
		defer done()

		n, err := client.Reconciler.RestoreNote(ctx, args[0])
		if err != nil {
			fatal("Failed to restore note", err)
		}
		fmt.Printf("Note '%s' restored.\n", n.ID)
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge <id>",
	Short: "Permanently delete an archived note and its media",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client, done := openClient(ctx)
		defer done()

		n, err := client.Reconciler.DeleteArchivedNote(ctx, args[0])
		if err != nil {
			fatal("Failed to delete note", err)
		}
		fmt.Printf("Note '%s' deleted.\n", n.ID)
	},
}

func init() {
	rootCmd.AddCommand(addCmd, listCmd, editCmd, highlightCmd, archiveCmd, restoreCmd, purgeCmd)

	listCmd.Flags().BoolVar(&listArchived, "archived", false, "List archived notes")
	listCmd.Flags().StringVar(&listFolder, "folder", "", "List notes filed in a folder")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")

	editCmd.Flags().StringVar(&editText, "text", "", "New title text")
	editCmd.Flags().StringVar(&editBody, "body", "", "New body")
	editCmd.Flags().StringVar(&editFolder, "folder", "", "Folder id (empty to unfile)")
	editCmd.Flags().StringVar(&editReminder, "reminder", "", "Reminder time (RFC3339)")
	editCmd.Flags().BoolVar(&editClear, "clear-reminder", false, "Remove the reminder")
	editCmd.Flags().BoolVar(&editLock, "lock", false, "Lock the note")
	editCmd.Flags().BoolVar(&editUnlock, "unlock", false, "Unlock the note")
	editCmd.MarkFlagsMutuallyExclusive("reminder", "clear-reminder")
	editCmd.MarkFlagsMutuallyExclusive("lock", "unlock")
}
