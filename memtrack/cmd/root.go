// Package cmd provides the command-line interface for the memory tracker.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "memtrack",
	Short: "Memtrack visualizes demand paging in real time through a web " +
		"dashboard.",
	Long: `Memtrack simulates a physical memory pool with per-process page ` +
		`tables and FIFO or LRU replacement. It serves a dashboard that shows ` +
		`every frame live, drives random workloads, and records the full ` +
		`event history for later analysis.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// A .env file next to the binary provides credential defaults.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
