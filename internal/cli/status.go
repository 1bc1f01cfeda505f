package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"calscope/internal/adapter/store"
)

var resetYes bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage location and what it holds",
	RunE:  runStatus,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the session, history and all plans",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(statusCmd, resetCmd)
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "do not ask for confirmation")
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := GetConfig()
	fmt.Printf("Storage driver:  %s\n", cfg.Storage.Driver)
	if a.path != "" {
		fmt.Printf("Storage path:    %s\n", a.path)
	}
	if bs, ok := a.backend.(*store.BoltStore); ok {
		version, err := bs.SchemaVersion()
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		keys, err := bs.Keys()
		if err != nil {
			return fmt.Errorf("failed to list keys: %w", err)
		}
		sort.Strings(keys)
		fmt.Printf("Schema version:  %d\n", version)
		fmt.Printf("Stored entries:  %v\n", keys)
	}

	_, authed := a.auth.Token()
	fmt.Printf("Logged in:       %v\n", authed)
	fmt.Printf("History entries: %d\n", len(a.meals.History()))
	fmt.Printf("Meal plans:      %d\n", len(a.plans.Plans()))
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		ok, err := confirm("Delete the session, history and all plans? [y/N] ")
		if err != nil || !ok {
			return err
		}
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if bs, ok := a.backend.(*store.BoltStore); ok {
		if err := bs.Clear(); err != nil {
			return fmt.Errorf("failed to clear state: %w", err)
		}
		fmt.Println("State cleared.")
		return nil
	}

	if err := a.auth.Logout(); err != nil {
		return err
	}
	if err := a.meals.SetHistory(nil); err != nil {
		return err
	}
	for _, p := range a.plans.Plans() {
		if err := a.plans.DeletePlan(p.ID); err != nil {
			return err
		}
	}
	fmt.Println("State cleared.")
	return nil
}
