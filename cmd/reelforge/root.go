package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "reelforge",
	Short: "reelforge turns topics into published short-form videos",
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)
}
