package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deyanlaf0409/noteblocks"
)

var (
	initStorage string
	initFormat  string
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a data directory",
	Long:  `Create a data directory (./.noteblocks unless --dir is given) and write its noteblocks.yaml.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir := dataDir
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				fatal("Failed to get CWD", err)
			}
			dir = filepath.Join(cwd, noteblocks.DataDir)
		}

		cfg, err := noteblocks.LoadConfig(dir)
		if err != nil {
			fatal("Failed to read config", err)
		}
		cfg.Storage = initStorage
		cfg.Format = initFormat
		if err := noteblocks.SaveConfig(dir, cfg); err != nil {
			fatal("Failed to initialize data directory", err)
		}

		fmt.Println("Initialized noteblocks data directory in", dir)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initStorage, "storage", noteblocks.StorageFS, "Storage backend (fs, sqlite, memory)")
	initCmd.Flags().StringVar(&initFormat, "format", "json", "File format for fs storage (json, yaml)")
}
