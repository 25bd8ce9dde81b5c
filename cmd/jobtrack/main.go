// Package main provides the jobtrack command: the job tracker API server and
// its terminal client.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	rootConfigPath string
	rootOutput     string
	rootAPIURL     string
)

var rootCmd = &cobra.Command{
	Use:   "jobtrack",
	Short: "Track job applications, contacts and application analytics",
	Long: `jobtrack records the jobs you apply to and the people you meet along the way,
and summarises your search: applications per week and month, status funnel,
top companies, roles, technologies, locations and compensation.

Run "jobtrack serve" to host the API, then "jobtrack signup" or "jobtrack login"
to start a session. Configuration can be loaded from a JSON file using --config;
command-line flags override config file values.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to config.json (defaults to $XDG_CONFIG_HOME/jobtrack/config.json when present)")
	rootCmd.PersistentFlags().StringVarP(&rootOutput, "output", "o", "", "Output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&rootAPIURL, "api-url", "", "Base URL of the jobtrack API (defaults to JOBTRACK_API_URL or http://localhost:8080)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
