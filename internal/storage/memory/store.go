package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JakeFAU/seo-reporter/internal/reporter"
)

type sessionToken struct {
	userID    string
	expiresAt time.Time
}

// Store implements reporter.Store in memory. It enforces the same foreign
// keys and uniqueness rules as the Postgres schema.
type Store struct {
	mu       sync.RWMutex
	users    map[string]reporter.User
	tokens   map[string]sessionToken
	audits   []reporter.Audit
	sessions map[string]reporter.ScrapeSession
	leads    map[string][]reporter.Lead
	leadIDs  map[string]struct{}
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]reporter.User),
		tokens:   make(map[string]sessionToken),
		sessions: make(map[string]reporter.ScrapeSession),
		leads:    make(map[string][]reporter.Lead),
		leadIDs:  make(map[string]struct{}),
	}
}

// AddUser seeds a user. Emails are unique.
func (s *Store) AddUser(user reporter.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email && existing.ID != user.ID {
			return fmt.Errorf("user email %q already exists", user.Email)
		}
	}
	if user.Role == "" {
		user.Role = reporter.RoleOwner
	}
	s.users[user.ID] = user
	return nil
}

// AddSession seeds an auth session token for an existing user.
func (s *Store) AddSession(token, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("session user %q: %w", userID, reporter.ErrNotFound)
	}
	s.tokens[token] = sessionToken{userID: userID, expiresAt: expiresAt}
	return nil
}

// FindUserByEmail returns the user with exactly this email.
func (s *Store) FindUserByEmail(_ context.Context, email string) (reporter.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return reporter.User{}, reporter.ErrNotFound
}

// FindUserBySessionToken resolves an unexpired session token.
func (s *Store) FindUserBySessionToken(_ context.Context, token string, now time.Time) (reporter.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.tokens[token]
	if !ok || !sess.expiresAt.After(now) {
		return reporter.User{}, reporter.ErrNotFound
	}
	user, ok := s.users[sess.userID]
	if !ok {
		return reporter.User{}, reporter.ErrNotFound
	}
	return user, nil
}

// CreateAudit stores an audit for an existing user.
func (s *Store) CreateAudit(_ context.Context, audit reporter.Audit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[audit.UserID]; !ok {
		return fmt.Errorf("audit user %q: %w", audit.UserID, reporter.ErrNotFound)
	}
	for _, existing := range s.audits {
		if existing.ID == audit.ID {
			return errors.New("audit already exists")
		}
	}
	s.audits = append(s.audits, audit)
	return nil
}

// ListAudits returns the user's audits, newest first; equal timestamps order by
// descending ID.
func (s *Store) ListAudits(_ context.Context, userID string) ([]reporter.Audit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []reporter.Audit{}
	for _, audit := range s.audits {
		if audit.UserID == userID {
			out = append(out, audit)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CreateScrapeSession stores a session for an existing user.
func (s *Store) CreateScrapeSession(_ context.Context, session reporter.ScrapeSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[session.UserID]; !ok {
		return fmt.Errorf("scrape session user %q: %w", session.UserID, reporter.ErrNotFound)
	}
	if _, exists := s.sessions[session.ID]; exists {
		return fmt.Errorf("scrape session %q already exists", session.ID)
	}
	session.Leads = nil
	s.sessions[session.ID] = session
	return nil
}

// CreateLead stores a lead for an existing session.
func (s *Store) CreateLead(_ context.Context, lead reporter.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[lead.SessionID]; !ok {
		return fmt.Errorf("lead session %q: %w", lead.SessionID, reporter.ErrNotFound)
	}
	if strings.TrimSpace(lead.BusinessName) == "" {
		return errors.New("lead business name is required")
	}
	if _, exists := s.leadIDs[lead.ID]; exists {
		return fmt.Errorf("lead %q already exists", lead.ID)
	}
	s.leadIDs[lead.ID] = struct{}{}
	s.leads[lead.SessionID] = append(s.leads[lead.SessionID], lead)
	return nil
}

// ListScrapeSessions returns the user's sessions ordered like ListAudits, each
// with its leads in insertion order.
func (s *Store) ListScrapeSessions(_ context.Context, userID string) ([]reporter.ScrapeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []reporter.ScrapeSession{}
	for _, session := range s.sessions {
		if session.UserID != userID {
			continue
		}
		session.Leads = append([]reporter.Lead{}, s.leads[session.ID]...)
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() {}
