package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deyanlaf0409/noteblocks"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of noteblocks",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("noteblocks version %s\n", noteblocks.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
