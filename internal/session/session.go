// Package session persists the authenticated flag and cached user profile
// and notifies subscribers when either changes. It is the process-wide
// replacement for the pair of browser-storage keys the console's state
// model is built around.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/tnslabs/waconsole/internal/models"
)

const sessionFile = "session.yml"

// State is a snapshot of the stored session.
type State struct {
	Authenticated bool         `yaml:"authenticated"`
	User          *models.User `yaml:"user,omitempty"`
}

// Store is a file-backed session with change notification.
type Store struct {
	mu          sync.RWMutex
	dir         string
	state       State
	subscribers []chan State
}

// Open loads the session file from dir, creating the directory if needed.
// A missing or unreadable file yields a logged-out state.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	s := &Store{dir: dir}
	data, err := os.ReadFile(s.path())
	if err == nil {
		var st State
		if yaml.Unmarshal(data, &st) == nil {
			s.state = st
		}
	}
	return s, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, sessionFile)
}

// Current returns a snapshot of the session state.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Authenticated reports whether a login is cached.
func (s *Store) Authenticated() bool {
	return s.Current().Authenticated
}

// User returns the cached profile, or nil when logged out.
func (s *Store) User() *models.User {
	return s.Current().User
}

// SetUser marks the session authenticated with the given profile and
// persists it.
func (s *Store) SetUser(user models.User) error {
	return s.update(State{Authenticated: true, User: &user})
}

// Clear logs the session out and removes the cached profile.
func (s *Store) Clear() error {
	return s.update(State{})
}

func (s *Store) update(st State) error {
	s.mu.Lock()
	s.state = st
	subs := make([]chan State, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- st:
		default:
		}
	}

	data, err := yaml.Marshal(&st)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Subscribe returns a channel that receives each new session state. The
// channel is buffered; a slow reader misses intermediate states, never
// blocks a writer.
func (s *Store) Subscribe() <-chan State {
	ch := make(chan State, 1)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}
