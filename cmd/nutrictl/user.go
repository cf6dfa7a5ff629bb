package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Inspect registered users",
}

var userMetricsCmd = &cobra.Command{
	Use:   "metrics <username|email>",
	Short: "Show a user's BMR, TDEE and macro targets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *services) error {
			u, err := s.users.FindByIdentifier(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("user %q: %w", args[0], err)
			}

			m, err := s.account.GetMetrics(cmd.Context(), u.ID())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User:     %s <%s>\n", m.User.Username, m.User.Email)
			fmt.Fprintf(out, "Body:     %.1f kg, %.1f cm, %d y, %s, %s\n",
				m.User.WeightKg, m.User.HeightCm, m.User.Age, m.User.Gender, m.User.Activity)
			fmt.Fprintf(out, "BMR:      %.0f kcal\n", m.BMR)
			fmt.Fprintf(out, "TDEE:     %.0f kcal\n", m.TDEE)
			fmt.Fprintf(out, "Protein:  %.0f g\n", m.Macros.Protein)
			fmt.Fprintf(out, "Carbs:    %.0f g\n", m.Macros.Carbs)
			fmt.Fprintf(out, "Fat:      %.0f g\n", m.Macros.Fat)
			fmt.Fprintf(out, "Fiber:    %.0f g\n", m.Macros.Fiber)
			return nil
		})
	},
}

func init() {
	userCmd.AddCommand(userMetricsCmd)
	rootCmd.AddCommand(userCmd)
}
