package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"calscope/internal/domain"
	"calscope/internal/state"
	"calscope/internal/usecase"
)

var (
	planName        string
	planDescription string
	planGoal        int
	planJSON        bool
	mealDay         string
	mealName        string
	mealCalories    int
	mealTime        string
	mealID          string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage weekly meal plans",
	Long: `Manage weekly meal plans. Plans are addressed by id or any unique id prefix.

Examples:
  calscope plan create --name "Cut" --goal 1800
  calscope plan add-meal 0192 --day Monday --name Oats --calories 350 --time breakfast
  calscope plan show 0192`,
}

var planCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an empty plan",
	RunE:  runPlanCreate,
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans",
	RunE:  runPlanList,
}

var planShowCmd = &cobra.Command{
	Use:   "show <plan>",
	Short: "Show a plan with per-day progress against its goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanShow,
}

var planUpdateCmd = &cobra.Command{
	Use:   "update <plan>",
	Short: "Change a plan's name, description or goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanUpdate,
}

var planDeleteCmd = &cobra.Command{
	Use:   "delete <plan>",
	Short: "Delete a plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanDelete,
}

var planAddMealCmd = &cobra.Command{
	Use:   "add-meal <plan>",
	Short: "Add a meal to one day of a plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanAddMeal,
}

var planRemoveMealCmd = &cobra.Command{
	Use:   "remove-meal <plan>",
	Short: "Remove a meal from one day of a plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanRemoveMeal,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planCreateCmd, planListCmd, planShowCmd, planUpdateCmd, planDeleteCmd, planAddMealCmd, planRemoveMealCmd)

	for _, c := range []*cobra.Command{planCreateCmd, planUpdateCmd} {
		c.Flags().StringVar(&planName, "name", "", "plan name")
		c.Flags().StringVar(&planDescription, "description", "", "plan description")
		c.Flags().IntVar(&planGoal, "goal", 2000, "daily calorie goal")
	}
	planCreateCmd.MarkFlagRequired("name")
	for _, c := range []*cobra.Command{planListCmd, planShowCmd} {
		c.Flags().BoolVar(&planJSON, "json", false, "output as JSON")
	}

	for _, c := range []*cobra.Command{planAddMealCmd, planRemoveMealCmd} {
		c.Flags().StringVar(&mealDay, "day", "", "weekday, e.g. Monday (required)")
		c.MarkFlagRequired("day")
	}
	planAddMealCmd.Flags().StringVar(&mealName, "name", "", "meal name (required)")
	planAddMealCmd.Flags().IntVar(&mealCalories, "calories", 0, "calories (required)")
	planAddMealCmd.Flags().StringVar(&mealTime, "time", string(domain.Lunch), "breakfast, lunch, dinner or snack")
	planAddMealCmd.MarkFlagRequired("name")
	planAddMealCmd.MarkFlagRequired("calories")
	planRemoveMealCmd.Flags().StringVar(&mealID, "meal", "", "meal id or unique prefix (required)")
	planRemoveMealCmd.MarkFlagRequired("meal")
}

// resolvePlan finds the plan whose id equals or uniquely starts with ref.
func resolvePlan(plans *state.PlanStore, ref string) (domain.MealPlan, error) {
	var match []domain.MealPlan
	for _, p := range plans.Plans() {
		if p.ID == ref {
			return p, nil
		}
		if strings.HasPrefix(p.ID, ref) {
			match = append(match, p)
		}
	}
	switch len(match) {
	case 0:
		return domain.MealPlan{}, fmt.Errorf("%w: %s", domain.ErrPlanNotFound, ref)
	case 1:
		return match[0], nil
	default:
		return domain.MealPlan{}, fmt.Errorf("plan id %q is ambiguous (%d matches)", ref, len(match))
	}
}

// parseDay accepts any capitalisation of a weekday name.
func parseDay(s string) (domain.Weekday, error) {
	for _, d := range domain.Weekdays {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidDay, s)
}

func runPlanCreate(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := usecase.NewPlan(planName, planDescription, planGoal, time.Now())
	if err != nil {
		return err
	}
	if err := a.plans.AddPlan(plan); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	fmt.Printf("Created plan %s (%s)\n", plan.Name, plan.ID)
	return nil
}

func runPlanList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	plans := a.plans.Plans()
	if planJSON {
		output, _ := json.MarshalIndent(plans, "", "  ")
		fmt.Println(string(output))
		return nil
	}
	if len(plans) == 0 {
		fmt.Println("No plans yet. Create one with 'calscope plan create'.")
		return nil
	}
	for _, p := range plans {
		st := usecase.ComputePlanStats(p)
		fmt.Printf("%s  %-24s goal %5d  meals %3d  avg/day %5d\n", p.ID, p.Name, p.DailyCalorieGoal, st.TotalMeals, st.AvgDaily)
	}
	return nil
}

func runPlanShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := resolvePlan(a.plans, args[0])
	if err != nil {
		return err
	}
	if planJSON {
		output, _ := json.MarshalIndent(plan, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	st := usecase.ComputePlanStats(plan)
	fmt.Printf("%s (%s)\n", plan.Name, plan.ID)
	if plan.Description != "" {
		fmt.Printf("%s\n", plan.Description)
	}
	fmt.Printf("Goal %d kcal/day, %d meals, %d kcal total, %d kcal/day average\n\n",
		plan.DailyCalorieGoal, st.TotalMeals, st.TotalCalories, st.AvgDaily)

	for _, ds := range st.Days {
		printDayProgress(ds, plan.DailyCalorieGoal)
		for _, m := range plan.Days[ds.Day] {
			fmt.Printf("    %-9s %-28s %5d kcal  [%s]\n", m.Time, m.Name, m.Calories, m.ID)
		}
	}
	return nil
}

func printDayProgress(ds usecase.DayStats, goal int) {
	desc := fmt.Sprintf("%-9s", ds.Day)
	if ds.OverGoal {
		desc = fmt.Sprintf("[red]%-9s[reset]", ds.Day)
	}
	bar := progressbar.NewOptions(100,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	bar.Set(ds.Progress)
	fmt.Printf("  %d/%d kcal\n", ds.Calories, goal)
}

func runPlanUpdate(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := resolvePlan(a.plans, args[0])
	if err != nil {
		return err
	}

	var patch domain.PlanPatch
	if cmd.Flags().Changed("name") {
		name := strings.TrimSpace(planName)
		if name == "" {
			return usecase.ErrEmptyName
		}
		patch.Name = &name
	}
	if cmd.Flags().Changed("description") {
		patch.Description = &planDescription
	}
	if cmd.Flags().Changed("goal") {
		if planGoal <= 0 {
			return usecase.ErrInvalidGoal
		}
		patch.DailyCalorieGoal = &planGoal
	}
	if patch.Name == nil && patch.Description == nil && patch.DailyCalorieGoal == nil {
		return fmt.Errorf("nothing to update; pass --name, --description or --goal")
	}

	if err := a.plans.UpdatePlan(plan.ID, patch); err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	fmt.Printf("Updated plan %s\n", plan.ID)
	return nil
}

func runPlanDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := resolvePlan(a.plans, args[0])
	if err != nil {
		return err
	}
	if err := a.plans.DeletePlan(plan.ID); err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	fmt.Printf("Deleted plan %s (%s)\n", plan.Name, plan.ID)
	return nil
}

func runPlanAddMeal(cmd *cobra.Command, args []string) error {
	day, err := parseDay(mealDay)
	if err != nil {
		return err
	}
	meal, err := usecase.NewMeal(mealName, mealCalories, domain.MealTime(strings.ToLower(mealTime)))
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := resolvePlan(a.plans, args[0])
	if err != nil {
		return err
	}
	if err := a.plans.AddMealToPlan(plan.ID, day, meal); err != nil {
		return fmt.Errorf("failed to add meal: %w", err)
	}
	fmt.Printf("Added %s to %s (%s)\n", meal.Name, day, meal.ID)
	return nil
}

func runPlanRemoveMeal(cmd *cobra.Command, args []string) error {
	day, err := parseDay(mealDay)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := resolvePlan(a.plans, args[0])
	if err != nil {
		return err
	}
	var id string
	for _, m := range plan.Days[day] {
		if m.ID == mealID || strings.HasPrefix(m.ID, mealID) {
			if id != "" {
				return fmt.Errorf("meal id %q is ambiguous", mealID)
			}
			id = m.ID
		}
	}
	if id == "" {
		return fmt.Errorf("no meal %q on %s", mealID, day)
	}
	if err := a.plans.RemoveMealFromPlan(plan.ID, day, id); err != nil {
		return fmt.Errorf("failed to remove meal: %w", err)
	}
	fmt.Printf("Removed meal %s from %s\n", id, day)
	return nil
}
