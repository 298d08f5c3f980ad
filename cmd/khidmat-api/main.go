package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "khidmat-api",
	Short: "Khidmat API - Constituency service platform",
	Long:  `HTTP API for the constituency service platform: staff and community sessions, workspace gating, issue reporting, and aid distribution tracking.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
