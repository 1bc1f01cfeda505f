package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"calscope/internal/adapter/historyindex"
	"calscope/internal/domain"
)

var (
	historyMatch string
	historyLimit int
	searchLimit  int
	historyJSON  bool
	historyYes   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or clear past lookups",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past lookups, most recent first",
	Long: `List past lookups, most recent first.

Examples:
  calscope history list
  calscope history list --match "*biryani*"`,
	RunE: runHistoryList,
}

var historySearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Fuzzy-search dishes you have looked up",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistorySearch,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole search history",
	RunE:  runHistoryClear,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historySearchCmd, historyClearCmd)

	historyListCmd.Flags().StringVarP(&historyMatch, "match", "m", "", "glob on dish name, e.g. \"*rice*\"")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "maximum entries (0 = all)")
	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historySearchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum matches")
	historyClearCmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "do not ask for confirmation")
}

func filterHistory(history []domain.MealRecord, pattern string) ([]domain.MealRecord, error) {
	if pattern == "" {
		return history, nil
	}
	pattern = strings.ToLower(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid match pattern %q", pattern)
	}
	var out []domain.MealRecord
	for _, rec := range history {
		ok, err := doublestar.Match(pattern, strings.ToLower(rec.DishName))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	history, err := filterHistory(a.meals.History(), historyMatch)
	if err != nil {
		return err
	}
	if historyLimit > 0 && len(history) > historyLimit {
		history = history[:historyLimit]
	}

	if historyJSON {
		if history == nil {
			history = []domain.MealRecord{}
		}
		output, _ := json.MarshalIndent(history, "", "  ")
		fmt.Println(string(output))
		return nil
	}
	if len(history) == 0 {
		fmt.Println("No history.")
		return nil
	}
	fmt.Printf("%d of %d lookups:\n\n", len(history), len(a.meals.History()))
	for i, rec := range history {
		fmt.Printf("%3d. %-40s %2d x %6.0f = %7.0f kcal\n", i+1, rec.DishName, rec.Servings, rec.CaloriesPerServing, rec.TotalCalories)
	}
	return nil
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	idx, err := historyindex.New()
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Rebuild(a.meals.History()); err != nil {
		return err
	}
	term := strings.Join(args, " ")
	hits, err := idx.Search(term, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(hits) == 0 {
		fmt.Println("No matching dishes.")
		return nil
	}
	fmt.Printf("Found %d dishes for: %s\n\n", len(hits), term)
	for _, h := range hits {
		fmt.Printf("  %-40s looked up %d time(s) (score: %.2f)\n", h.Dish, h.Lookups, h.Score)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n := len(a.meals.History())
	if n == 0 {
		fmt.Println("History is already empty.")
		return nil
	}
	if !historyYes {
		ok, err := confirm(fmt.Sprintf("Delete %d lookups? [y/N] ", n))
		if err != nil || !ok {
			return err
		}
	}
	if err := a.meals.SetHistory(nil); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Printf("Cleared %d lookups.\n", n)
	return nil
}
