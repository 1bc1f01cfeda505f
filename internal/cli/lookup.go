package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"calscope/internal/adapter/calorieapi"
	"calscope/internal/domain"
	"calscope/internal/usecase"
)

var (
	lookupServings int
	lookupJSON     bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <dish>",
	Short: "Look up calories for a dish",
	Long: `Look up calories for a dish and add the result to your search history.

Examples:
  calscope lookup "chicken biryani" --servings 2
  calscope lookup pad thai --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().IntVarP(&lookupServings, "servings", "s", 1, "number of servings (1-20)")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "output as JSON")
}

func newLookupForm(a *app, query usecase.QuerySink) *usecase.LookupForm {
	cfg := GetConfig()
	return usecase.NewLookupForm(calorieapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout), a.auth, a.meals, query)
}

func runLookup(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireAuth(); err != nil {
		return err
	}

	form := newLookupForm(a, nil)
	form.SetDishName(strings.Join(args, " "))
	form.SetServings(lookupServings)

	rec, err := form.Submit(cmd.Context())
	if err != nil {
		return submitFailure(form, err)
	}

	if lookupJSON {
		output, _ := json.MarshalIndent(rec, "", "  ")
		fmt.Println(string(output))
		return nil
	}
	printMealRecord(rec)
	return nil
}

func submitFailure(form *usecase.LookupForm, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	if errors.Is(err, domain.ErrNotAuthenticated) {
		return fmt.Errorf("not logged in; run 'calscope login'")
	}
	return errors.New(form.State().Error)
}

func printMealRecord(rec domain.MealRecord) {
	fmt.Printf("%s\n", rec.DishName)
	fmt.Printf("  Servings:             %d\n", rec.Servings)
	fmt.Printf("  Calories per serving: %.0f\n", rec.CaloriesPerServing)
	fmt.Printf("  Total calories:       %.0f\n", rec.TotalCalories)
	fmt.Printf("  Source:               %s\n", rec.Source)
	if !rec.Consistent() {
		fmt.Printf("  Note: total differs from %d x %.0f as reported by the service\n", rec.Servings, rec.CaloriesPerServing)
	}
}
