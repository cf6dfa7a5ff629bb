package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/nutridash/dashboard/internal/ports/inbound"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query the food catalog",
}

var catalogCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List catalog categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *services) error {
			categories, err := s.catalog.Categories(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range categories {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		})
	},
}

var (
	searchCategories []string
	searchLimit      int
	searchOffset     int
)

var catalogSearchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search foods by name and category",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := inbound.FoodQuery{
			Categories: searchCategories,
			Offset:     searchOffset,
			Limit:      searchLimit,
		}
		if len(args) == 1 {
			query.Search = args[0]
		}

		return withServices(func(s *services) error {
			list, err := s.catalog.SearchFoods(cmd.Context(), query)
			if err != nil {
				return err
			}
			printFoods(cmd.OutOrStdout(), list.Foods)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d foods\n", len(list.Foods), list.Total)
			return nil
		})
	},
}

var (
	topCount      int
	topCategories []string
	topSearch     string
)

var catalogTopCmd = &cobra.Command{
	Use:   "top <nutrient>",
	Short: "Rank foods by calories, protein, carbs, fat, fiber or sugar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(func(s *services) error {
			ranked, err := s.catalog.TopFoods(cmd.Context(), inbound.TopFoodsQuery{
				Nutrient:   args[0],
				Count:      topCount,
				Categories: topCategories,
				Search:     topSearch,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "RANK\tFOOD\tCATEGORY\tVALUE")
			for _, r := range ranked {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%.1f %s\n", r.Rank, r.Food.Name, r.Food.Category, r.Value, r.Unit)
			}
			return nil
		})
	},
}

func printFoods(w io.Writer, foods []inbound.FoodDTO) {
	fmt.Fprintln(w, "ID\tFOOD\tCATEGORY\tKCAL\tPROTEIN\tCARBS\tFAT")
	for _, f := range foods {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.Name, f.Category,
			amount(f.Calories), amount(f.Protein), amount(f.Carbs), amount(f.Fat))
	}
}

func amount(v *float64) string {
	if v == nil {
		return "-"
	}
	return strings.TrimSuffix(fmt.Sprintf("%.1f", *v), ".0")
}

func init() {
	catalogSearchCmd.Flags().StringArrayVar(&searchCategories, "category", nil, "Category filter; repeatable")
	catalogSearchCmd.Flags().IntVar(&searchLimit, "limit", 20, "Maximum rows")
	catalogSearchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Rows to skip")

	catalogTopCmd.Flags().IntVar(&topCount, "count", 10, "Number of foods (5-30)")
	catalogTopCmd.Flags().StringArrayVar(&topCategories, "category", nil, "Category filter; repeatable")
	catalogTopCmd.Flags().StringVar(&topSearch, "search", "", "Name substring filter")

	catalogCmd.AddCommand(catalogCategoriesCmd, catalogSearchCmd, catalogTopCmd)
	rootCmd.AddCommand(catalogCmd)
}
