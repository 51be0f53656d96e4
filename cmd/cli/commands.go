package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	studentID string
	weekStart int64
	dryRun    bool
	limit     int
)

func init() {
	standingsCmd.Flags().StringVar(&studentID, "student", "", "The student id to look up")
	standingsCmd.MarkFlagRequired("student")
	lastWeekCmd.Flags().StringVar(&studentID, "student", "", "The student id to look up")
	lastWeekCmd.MarkFlagRequired("student")
	leaderboardCmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of rows")
	rolloverCmd.Flags().Int64Var(&weekStart, "week-start", 0, "Unix seconds of the week to roll over (defaults to last week)")
	rolloverCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the rollover without writing")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(studentsCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(lastWeekCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(rolloverCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "List the enrolled students",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/students")
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Show a student's current league standings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/standings?studentID=" + url.QueryEscape(studentID))
	},
}

var lastWeekCmd = &cobra.Command{
	Use:   "last-week",
	Short: "Show a student's finalized result for last week",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/last-week?studentID=" + url.QueryEscape(studentID))
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the all-time XP leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest(fmt.Sprintf("/leaderboard?limit=%d", limit))
	},
}

var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Trigger the weekly league rollover",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/rollover"
		params := url.Values{}
		if weekStart > 0 {
			params.Set("week_start", fmt.Sprintf("%d", weekStart))
		}
		if dryRun {
			params.Set("dry_run", "true")
		}
		if len(params) > 0 {
			endpoint += "?" + params.Encode()
		}
		return performGetRequest(endpoint)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
