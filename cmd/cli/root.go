package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/renderwatch/internal/apiclient"
)

var (
	apiURL  string
	apiKey  string
	timeout time.Duration
	client  *apiclient.Client
)

var rootCmd = &cobra.Command{
	Use:   "renderwatch",
	Short: "Operate a Render inactivity monitor",
	Long: `renderwatch talks to a running monitor: start watching apps, stop them,
and inspect their current state and recent checks.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		client = apiclient.New(apiURL, apiKey)
		client.HTTPClient.Timeout = timeout
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaultURL := os.Getenv("API_BASE")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "monitor API base URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "key", os.Getenv("API_KEY"), "API key (admin key for start/stop)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	rootCmd.AddCommand(startCmd, stopCmd, statusCmd, historyCmd)
}
