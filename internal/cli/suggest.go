package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"calscope/internal/domain"
	"calscope/internal/usecase"
)

var (
	suggestJSON     bool
	suggestServings int
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [query]",
	Short: "Suggest dish names from your history and the USDA catalog",
	Long: `With a query, print suggestions once. Without one, start an interactive
prompt that refreshes suggestions as you type; Tab completes the current
suggestions and Enter looks up the dish when logged in.

Examples:
  calscope suggest biryani
  calscope suggest`,
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output as JSON (one-shot mode)")
	suggestCmd.Flags().IntVarP(&suggestServings, "servings", "s", 1, "servings for lookups from the prompt")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	coord := newCoordinator(GetConfig(), a.meals)
	defer coord.Close()

	if len(args) == 0 {
		return runSuggestPrompt(cmd, a, coord)
	}

	coord.SettleNow(strings.Join(args, " "))
	coord.Wait()
	view := coord.Snapshot()

	if suggestJSON {
		output, _ := json.MarshalIndent(view.Suggestions, "", "  ")
		fmt.Println(string(output))
		return nil
	}
	if len(view.Suggestions) == 0 {
		fmt.Println("No suggestions.")
		return nil
	}
	printView(cmd.OutOrStdout(), view)
	return nil
}

func printView(w io.Writer, view usecase.View) {
	for _, g := range []struct {
		heading string
		source  domain.SuggestionSource
	}{
		{usecase.HistoryHeading, domain.SourceHistory},
		{usecase.RemoteHeading, domain.SourceRemote},
	} {
		items := view.Group(g.source)
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", g.heading)
		for _, s := range items {
			fmt.Fprintf(w, "  %s\n", s.Text)
		}
	}
}

// suggestionCompleter offers the visible suggestions on Tab.
type suggestionCompleter struct {
	coord *usecase.Coordinator
}

func (c suggestionCompleter) Do(line []rune, pos int) ([][]rune, int) {
	typed := strings.ToLower(string(line[:pos]))
	var out [][]rune
	for _, s := range c.coord.Snapshot().Suggestions {
		if strings.HasPrefix(s.Text, typed) && len(s.Text) > len(typed) {
			out = append(out, []rune(s.Text[len(typed):]))
		}
	}
	return out, len([]rune(typed))
}

func runSuggestPrompt(cmd *cobra.Command, a *app, coord *usecase.Coordinator) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "dish> ",
		AutoComplete:    suggestionCompleter{coord: coord},
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Listener: readline.FuncListener(func(line []rune, pos int, key rune) ([]rune, int, bool) {
			coord.SetQuery(string(line))
			return nil, 0, false
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	var last struct {
		sync.Mutex
		shown string
	}
	unsubscribe := coord.Subscribe(func(v usecase.View) {
		if v.Loading || !v.Open {
			return
		}
		var b strings.Builder
		printView(&b, v)
		last.Lock()
		defer last.Unlock()
		if b.Len() == 0 || b.String() == last.shown {
			return
		}
		last.shown = b.String()
		fmt.Fprint(rl.Stdout(), b.String())
	})
	defer unsubscribe()

	form := newLookupForm(a, coord)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		form.SelectSuggestion(line)
		if err := a.requireAuth(); err != nil {
			fmt.Fprintln(rl.Stdout(), err)
			continue
		}
		form.SetServings(suggestServings)
		rec, err := form.Submit(cmd.Context())
		if err != nil {
			fmt.Fprintln(rl.Stdout(), "Error:", submitFailure(form, err))
			continue
		}
		printMealRecord(rec)
	}
}
