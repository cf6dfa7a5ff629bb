package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	healthURL     string
	healthTimeout time.Duration
	healthRetries int
)

// healthReport mirrors the /health response body
type healthReport struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Total   float64 `json:"total_duration_ms"`
	Checks  []struct {
		Name     string  `json:"name"`
		Status   string  `json:"status"`
		Message  string  `json:"message"`
		Duration float64 `json:"duration_ms"`
	} `json:"checks"`
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Query a running server's health endpoint; fails unless healthy or degraded",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: healthTimeout}

		var (
			report *healthReport
			err    error
		)
		for attempt := 0; attempt <= healthRetries; attempt++ {
			if attempt > 0 {
				time.Sleep(time.Second)
			}
			if report, err = fetchHealth(client, healthURL); err == nil {
				break
			}
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Status: %s (version %s, %.0fms)\n", report.Status, report.Version, report.Total)
		for _, c := range report.Checks {
			fmt.Fprintf(out, "  %-14s %-10s %6.0fms  %s\n", c.Name, c.Status, c.Duration, c.Message)
		}

		if report.Status == "unhealthy" {
			return fmt.Errorf("service is unhealthy")
		}
		return nil
	},
}

func fetchHealth(client *http.Client, url string) (*healthReport, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	var report healthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("invalid health response (HTTP %d): %w", resp.StatusCode, err)
	}
	return &report, nil
}

func init() {
	healthCmd.Flags().StringVar(&healthURL, "url", "http://localhost:8080/health", "Health endpoint URL")
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 10*time.Second, "Request timeout")
	healthCmd.Flags().IntVar(&healthRetries, "retry", 0, "Retries on connection failure")
	rootCmd.AddCommand(healthCmd)
}
