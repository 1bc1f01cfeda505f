// Package state holds the client-side view-model stores. Each store owns one
// key in the persistence backend, hydrates from it once at construction and
// writes its persisted subset back after every mutation.
package state

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"calscope/internal/port"
)

// envelope matches the layout written by the browser front-end, so existing
// localStorage entries hydrate unchanged.
type envelope struct {
	State   json.RawMessage `json:"state"`
	Version int             `json:"version"`
}

const envelopeVersion = 0

// store is the shared machinery behind every concrete store: one lock held
// for a whole reducer application, write-after-mutation and subscribers.
type store[S any] struct {
	mu      sync.Mutex
	key     string
	backend port.Persistence
	state   S
	persist func(S) any
	subs    subscribers[S]
}

// hydrate reads the persisted subset under key into dst. A corrupt entry is
// logged and ignored so the store starts from its defaults.
func hydrate(backend port.Persistence, key string, dst any) error {
	raw, ok, err := backend.Load(key)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.State) == 0 {
		log.Printf("Warning: ignoring unreadable %s entry: %v", key, err)
		return nil
	}
	if err := json.Unmarshal(env.State, dst); err != nil {
		log.Printf("Warning: ignoring unreadable %s state: %v", key, err)
	}
	return nil
}

func (s *store[S]) snapshot() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// apply runs reduce against the current state. On success the new state is
// installed, persisted and broadcast. A persistence failure is returned but
// the in-memory state keeps the mutation.
func (s *store[S]) apply(reduce func(S) (S, error)) error {
	s.mu.Lock()
	next, err := reduce(s.state)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	saveErr := s.saveLocked()
	s.mu.Unlock()

	s.subs.notify(next)
	return saveErr
}

func (s *store[S]) saveLocked() error {
	state, err := json.Marshal(s.persist(s.state))
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.key, err)
	}
	data, err := json.Marshal(envelope{State: state, Version: envelopeVersion})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.key, err)
	}
	if err := s.backend.Save(s.key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.key, err)
	}
	return nil
}

// Subscribe registers fn to receive every new state. The returned function
// unregisters it and is safe to call more than once.
func (s *store[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	return s.subs.add(fn)
}

type subscribers[S any] struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(S)
}

func (l *subscribers[S]) add(fn func(S)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(S))
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.fns, id)
		})
	}
}

func (l *subscribers[S]) notify(state S) {
	l.mu.Lock()
	fns := make([]func(S), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
