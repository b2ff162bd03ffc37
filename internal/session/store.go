// Package session holds the authenticated identity and its credential and
// keeps them in step with durable storage.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tman/internal/service"
)

// Durable storage keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrEmptyCredential is returned by Set for a blank token.
var ErrEmptyCredential = errors.New("empty token")

// Store is the single source of truth for the current session.
// Restore, Set and Clear are its only mutators.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	logger  *slog.Logger

	credential string
	profile    *service.Profile
}

// NewStore creates an empty Store over storage. Call Restore to load a
// previously persisted session.
func NewStore(storage Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{storage: storage, logger: logger}
}

// Restore loads the persisted session. Both keys must be present and well
// formed, otherwise the store stays empty. It reports whether a session
// was restored.
func (s *Store) Restore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credential = ""
	s.profile = nil

	token, okToken, err := s.storage.Get(KeyToken)
	if err != nil {
		s.logger.Debug("session restore failed", "key", KeyToken, "err", err)
		return false
	}
	userJSON, okUser, err := s.storage.Get(KeyUser)
	if err != nil {
		s.logger.Debug("session restore failed", "key", KeyUser, "err", err)
		return false
	}
	if !okToken || !okUser || strings.TrimSpace(token) == "" {
		return false
	}

	profile, err := decodeProfile(userJSON)
	if err != nil {
		s.logger.Debug("stored profile ignored", "err", err)
		return false
	}

	s.credential = token
	s.profile = &profile
	s.logger.Debug("session restored", "email", profile.Email)
	return true
}

// Set records a new session in storage and in memory.
func (s *Store) Set(credential string, profile service.Profile) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ErrEmptyCredential
	}
	userJSON, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(map[string]string{
		KeyToken: credential,
		KeyUser:  string(userJSON),
	}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.credential = credential
	p := profile
	s.profile = &p
	return nil
}

// Clear forgets the session. Memory is cleared even when storage fails;
// the storage error is still returned.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credential = ""
	s.profile = nil

	if err := s.storage.Delete(KeyToken, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Credential returns the bearer token, or "" when signed out.
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// Profile returns the signed-in user.
func (s *Store) Profile() (service.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return service.Profile{}, false
	}
	return *s.profile, true
}

// Authenticated reports whether a session is present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential != "" && s.profile != nil
}

// Snapshot is a consistent view of the session.
type Snapshot struct {
	Credential string
	Profile    service.Profile
	Present    bool
}

// Snapshot returns the credential and profile read under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credential == "" || s.profile == nil {
		return Snapshot{}
	}
	return Snapshot{Credential: s.credential, Profile: *s.profile, Present: true}
}

// CredentialExpiry decodes the exp claim when the credential is a JWT.
// The signature is not verified; the value is informational only.
func (s *Store) CredentialExpiry() (time.Time, bool) {
	token := s.Credential()
	if token == "" {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func decodeProfile(raw string) (service.Profile, error) {
	var p *service.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return service.Profile{}, fmt.Errorf("parse user: %w", err)
	}
	if p == nil || strings.TrimSpace(p.Email) == "" {
		return service.Profile{}, errors.New("parse user: missing email")
	}
	return *p, nil
}
