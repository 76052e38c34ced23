package storage

import "sync"

// Tabs tracks the per-tab scopes. A tab scope exists only in memory: closing
// the tab (or restarting the server) loses it, which is exactly the contract
// the viewer fallback to durable storage exists for.
type Tabs struct {
	mu     sync.Mutex
	scopes map[tabKey]*tabScope
}

type tabKey struct {
	userID int
	tabID  string
}

func NewTabs() *Tabs {
	return &Tabs{scopes: make(map[tabKey]*tabScope)}
}

// For returns the scope for one user+tab pair, creating it on first use.
func (t *Tabs) For(userID int, tabID string) Scope {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := tabKey{userID: userID, tabID: tabID}
	s, ok := t.scopes[k]
	if !ok {
		s = &tabScope{values: make(map[string]string)}
		t.scopes[k] = s
	}
	return s
}

// Drop discards every scope belonging to the user, used on sign-out.
func (t *Tabs) Drop(userID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.scopes {
		if k.userID == userID {
			delete(t.scopes, k)
		}
	}
}

type tabScope struct {
	mu     sync.Mutex
	values map[string]string
}

func (s *tabScope) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *tabScope) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *tabScope) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
