package state

import (
	"math/rand"
	"sync"
	"time"

	"github.com/auragen/auragen/internal/settings"
)

// State is one version of the shared settings.
type State struct {
	Settings settings.Settings
	Version  uint64
}

// Store holds the settings everyone renders from. Every accepted change bumps Version
// and wakes subscribers.
type Store struct {
	mu    sync.RWMutex
	state State
	subs  map[chan uint64]struct{}

	// Seeds supplies new seeds for Reroll.
	Seeds func() int64
}

func NewStore(initial settings.Settings) *Store {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var seedMu sync.Mutex
	return &Store{
		state: State{Settings: initial, Version: 1},
		subs:  map[chan uint64]struct{}{},
		Seeds: func() int64 {
			seedMu.Lock()
			defer seedMu.Unlock()
			return rng.Int63()
		},
	}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

// Settings returns the current settings snapshot.
func (store *Store) Settings() settings.Settings {
	return store.Snapshot().Settings
}

// Replace swaps in s if it validates. Invalid settings leave the store untouched.
func (store *Store) Replace(s settings.Settings) (State, error) {
	return store.Update(func(cur *settings.Settings) { *cur = s })
}

// Update applies fn to a copy of the current settings and commits the copy if it validates.
func (store *Store) Update(fn func(s *settings.Settings)) (State, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	next := store.state.Settings
	fn(&next)
	if err := next.Validate(); err != nil {
		return store.state, err
	}
	if next == store.state.Settings {
		return store.state, nil
	}
	store.state.Settings = next
	store.state.Version++
	store.publish()
	return store.state, nil
}

// Reroll keeps every setting but the seed.
func (store *Store) Reroll() State {
	seed := store.Seeds()
	st, _ := store.Update(func(s *settings.Settings) {
		if seed == s.Seed {
			seed++
		}
		s.Seed = seed
	})
	return st
}

// NextPattern switches to the pattern after the current one.
func (store *Store) NextPattern() State {
	st, _ := store.Update(func(s *settings.Settings) { s.Pattern = s.NextPattern() })
	return st
}

// Subscribe returns a channel receiving the newest version after each change. Versions
// coalesce: a slow reader only sees the latest one. Call cancel to stop receiving.
func (store *Store) Subscribe() (updates <-chan uint64, cancel func()) {
	ch := make(chan uint64, 1)
	store.mu.Lock()
	store.subs[ch] = struct{}{}
	store.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			store.mu.Lock()
			delete(store.subs, ch)
			store.mu.Unlock()
		})
	}
}

// publish is called with store.mu held.
func (store *Store) publish() {
	v := store.state.Version
	for ch := range store.subs {
		select {
		case ch <- v:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}
