package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Read feedback form submissions",
}

var feedbackLimit int

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *services) error {
			items, err := s.feedback.ListRecent(cmd.Context(), feedbackLimit)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No feedback yet")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "SUBMITTED\tNAME\tEMAIL\tSUBJECT\tMESSAGE")
			for _, f := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n",
					f.SubmittedAt.Format("2006-01-02 15:04"), f.Name, f.Email, f.Subject, oneLine(f.Message, 60))
			}
			return nil
		})
	},
}

func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func init() {
	feedbackListCmd.Flags().IntVar(&feedbackLimit, "limit", 20, "Maximum submissions")
	feedbackCmd.AddCommand(feedbackListCmd)
	rootCmd.AddCommand(feedbackCmd)
}
