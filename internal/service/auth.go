package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"inspectoriq/internal/logger"
	"inspectoriq/internal/model"
	"inspectoriq/internal/storage"
	"inspectoriq/internal/upstream"
)

// AuthService owns the session lifecycle: created on a successful sign-in,
// persisted under the authUser key immediately, read back when a user
// returns, destroyed on explicit sign-out. There is no client-side expiry;
// a stale upstream token is only discovered when a request fails.
type AuthService struct {
	upstream *upstream.Client
	durable  storage.ScopeProvider
	tabs     *storage.Tabs

	mu       sync.Mutex
	sessions map[int]*model.Session
}

func NewAuthService(up *upstream.Client, durable storage.ScopeProvider, tabs *storage.Tabs) *AuthService {
	return &AuthService{
		upstream: up,
		durable:  durable,
		tabs:     tabs,
		sessions: make(map[int]*model.Session),
	}
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	sess, err := s.upstream.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	data, _ := json.Marshal(sess)
	if err := s.durable.For(sess.ID).Set(storage.KeyAuthUser, string(data)); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	logger.Info("signin.ok", "uid", sess.ID, "name", sess.Name)
	return sess, nil
}

// SignUp registers a new account; the user signs in afterwards. The full
// name splits on the first space into first/last.
func (s *AuthService) SignUp(ctx context.Context, fullName, email, password string) error {
	first, last := splitName(fullName)
	if err := s.upstream.SignUp(ctx, first, last, email, password); err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	logger.Info("signup.ok", "email", email)
	return nil
}

// Resume returns the session for a user id, reading the persisted authUser
// entry back when the in-memory registry does not have it (e.g. after a
// restart).
func (s *AuthService) Resume(userID int) (*model.Session, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()
	if ok {
		return sess, true
	}

	raw, ok := s.durable.For(userID).Get(storage.KeyAuthUser)
	if !ok {
		return nil, false
	}
	var stored model.Session
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		// A corrupt entry is dropped, same as a missing one.
		s.durable.For(userID).Delete(storage.KeyAuthUser)
		return nil, false
	}
	s.mu.Lock()
	s.sessions[userID] = &stored
	s.mu.Unlock()
	return &stored, true
}

// SignOut clears the stored entry and the in-memory state, including every
// tab scope the user had open.
func (s *AuthService) SignOut(userID int) error {
	if err := s.durable.For(userID).Delete(storage.KeyAuthUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	s.tabs.Drop(userID)
	logger.Info("signout.ok", "uid", userID)
	return nil
}

// UpdateAccount proxies profile changes upstream. Password and confirmation
// must match before anything is sent.
func (s *AuthService) UpdateAccount(ctx context.Context, sess *model.Session, req model.AccountUpdateRequest) error {
	if req.Password != req.ConfirmPassword {
		return fmt.Errorf("passwords do not match")
	}
	fields := map[string]string{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Email != "" {
		fields["email"] = req.Email
	}
	if req.Password != "" {
		fields["password"] = req.Password
	}
	if err := s.upstream.UpdateAccount(ctx, sess.Token, fields); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
