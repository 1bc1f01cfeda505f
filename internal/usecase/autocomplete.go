package usecase

import (
	"context"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"calscope/internal/adapter/debounce"
	"calscope/internal/domain"
)

const (
	HistoryHeading = "Recent Searches"
	RemoteHeading  = "USDA Food Database"
)

// Fetcher resolves a settled query to suggestion strings. Implementations
// must not fail; an empty result means nothing to show.
type Fetcher interface {
	Fetch(ctx context.Context, term string) []string
}

// HistorySource lists the distinct lower-cased dish names already looked up.
type HistorySource interface {
	HistoryDishes() []string
}

// View is the visible state of the suggestion list.
type View struct {
	Query       string
	Suggestions []domain.Suggestion
	Loading     bool
	Open        bool
}

// Group returns the suggestions tagged with source, in fetch order.
func (v View) Group(source domain.SuggestionSource) []domain.Suggestion {
	var out []domain.Suggestion
	for _, s := range v.Suggestions {
		if s.Source == source {
			out = append(out, s)
		}
	}
	return out
}

type CoordinatorOptions struct {
	Delay       time.Duration
	MinQueryLen int
	Clock       debounce.Clock // nil uses the runtime timers
}

func DefaultCoordinatorOptions() CoordinatorOptions {
	return CoordinatorOptions{Delay: 300 * time.Millisecond, MinQueryLen: 2}
}

// Coordinator debounces keystrokes into fetches and publishes only the
// result belonging to the latest settled query. Every settle bumps a
// generation; a fetch result carrying an older generation is dropped.
type Coordinator struct {
	mu        sync.Mutex
	fetcher   Fetcher
	history   HistorySource
	minLen    int
	debouncer *debounce.Debouncer[string]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	gen     uint64
	settled string
	view    View
	closed  bool

	subsMu sync.Mutex
	subsID int
	subs   map[int]func(View)
}

func NewCoordinator(fetcher Fetcher, history HistorySource, opts CoordinatorOptions) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		fetcher: fetcher,
		history: history,
		minLen:  opts.MinQueryLen,
		ctx:     ctx,
		cancel:  cancel,
		subs:    make(map[int]func(View)),
	}
	c.debouncer = debounce.New(opts.Delay, opts.Clock, c.settle)
	return c
}

func (c *Coordinator) short(q string) bool {
	return utf8.RuneCountInString(q) < c.minLen
}

// SetQuery records a keystroke. Short queries clear the list at once;
// longer ones are fetched after the quiet period.
func (c *Coordinator) SetQuery(q string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.view.Query = q
	if c.short(q) {
		c.debouncer.Cancel()
		c.gen++
		c.settled = q
		c.view.Suggestions = nil
		c.view.Loading = false
		c.view.Open = false
	} else {
		c.view.Open = true
		c.debouncer.Set(q)
	}
	view := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(view)
}

// SettleNow skips the quiet period and fetches q immediately.
func (c *Coordinator) SettleNow(q string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.debouncer.Cancel()
	c.view.Query = q
	c.view.Open = !c.short(q)
	c.mu.Unlock()

	c.settle(q)
}

// Select accepts a suggestion as the query and closes the list without
// fetching.
func (c *Coordinator) Select(s string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.debouncer.Cancel()
	c.gen++
	c.settled = s
	c.view.Query = s
	c.view.Loading = false
	c.view.Open = false
	view := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(view)
}

func (c *Coordinator) settle(q string) {
	c.mu.Lock()
	// A timer that fired just before Select or a newer keystroke carries an
	// outdated value.
	if c.closed || q != c.view.Query {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.settled = q
	if c.short(q) {
		c.view.Suggestions = nil
		c.view.Loading = false
		view := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(view)
		return
	}
	gen := c.gen
	c.view.Loading = true
	c.wg.Add(1)
	go c.fetch(c.ctx, gen, q)
	view := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(view)
}

func (c *Coordinator) fetch(ctx context.Context, gen uint64, q string) {
	defer c.wg.Done()

	var results []string
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Warning: suggestion fetch for %q panicked: %v", q, r)
				results = nil
			}
		}()
		results = c.fetcher.Fetch(ctx, q)
	}()

	c.resolve(gen, results)
}

func (c *Coordinator) resolve(gen uint64, results []string) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}

	known := make(map[string]bool)
	if c.history != nil {
		for _, d := range c.history.HistoryDishes() {
			known[d] = true
		}
	}
	suggestions := make([]domain.Suggestion, 0, len(results))
	for _, r := range results {
		src := domain.SourceRemote
		if known[r] {
			src = domain.SourceHistory
		}
		suggestions = append(suggestions, domain.Suggestion{Text: r, Source: src})
	}
	c.view.Suggestions = suggestions
	c.view.Loading = false
	view := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(view)
}

func (c *Coordinator) snapshotLocked() View {
	v := c.view
	v.Suggestions = append([]domain.Suggestion(nil), c.view.Suggestions...)
	return v
}

// Snapshot returns the current view.
func (c *Coordinator) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Settled returns the query the visible suggestions belong to.
func (c *Coordinator) Settled() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settled
}

// Subscribe registers fn for every view change.
func (c *Coordinator) Subscribe(fn func(View)) (unsubscribe func()) {
	c.subsMu.Lock()
	id := c.subsID
	c.subsID++
	c.subs[id] = fn
	c.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			c.subsMu.Unlock()
		})
	}
}

func (c *Coordinator) notify(v View) {
	c.subsMu.Lock()
	fns := make([]func(View), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Wait blocks until every fetch started so far has resolved.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close cancels the pending emission and in-flight fetches. Results that
// still arrive are ignored.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.debouncer.Close()
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()
}
