package kiro

import (
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Store is the process-wide, in-memory Credential registry.
// Multiple concurrent readers may execute in parallel; writers (create, release,
// refresh) take the exclusive lock only for the duration of their own mutation and
// never hold it across a network call.
type Store struct {
	mu    sync.RWMutex
	creds map[string]*Credential
}

// NewStore constructs an empty Credential Store.
func NewStore() *Store {
	return &Store{creds: make(map[string]*Credential)}
}

// Create validates authType and the supplied Credential, assigns a fresh ID, and
// inserts it into the store.
func (s *Store) Create(authType string, c *Credential) (string, error) {
	if authType != "oauth" {
		return "", newError(KindUnsupportedAuthType, "unsupported auth_type %q", authType)
	}
	if c.RefreshToken == "" {
		return "", newError(KindMissingRefreshToken, "refresh_token is required")
	}
	if c.AuthMethod == "" {
		c.AuthMethod = AuthMethodSocial
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if !c.IsHealthy {
		c.IsHealthy = true
	}

	id := uuid.NewString()
	c.ID = id

	s.mu.Lock()
	s.creds[id] = c
	s.mu.Unlock()

	log.WithFields(log.Fields{"credential_id": id, "auth_method": c.AuthMethod}).Debug("credential created")
	return id, nil
}

// snapshot copies the credential at id, or returns nil if absent. The caller holds
// no lock on return — the returned pointer is a private copy safe to read after
// the read lock is released.
func (s *Store) snapshot(id string) *Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.creds[id]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

// Acquire selects a healthy credential for model and returns the host-facing view.
// The read lock is released before the response is constructed; no network call
// happens here, but header synthesis never runs while holding the lock.
func (s *Store) Acquire(model string) (*AcquiredCredential, error) {
	if !isClaudeModel(model) {
		return nil, newError(KindUnsupportedModel, "model %q is not a claude- model", model)
	}

	s.mu.RLock()
	picked := pickHealthiest(s.creds)
	var chosen *Credential
	if picked != nil {
		cp := *picked
		chosen = &cp
	}
	s.mu.RUnlock()

	if chosen == nil {
		return nil, newError(KindNoHealthyCredential, "no healthy credential available")
	}
	if chosen.AccessToken == "" {
		return nil, newError(KindMissingAccessToken, "credential %s has no access_token", chosen.ID)
	}

	version := KiroVersion()
	machineID := machineIDFor(chosen)
	headers := acquireHeaders(chosen.AccessToken, version, machineID)

	return &AcquiredCredential{
		ID:       chosen.ID,
		Name:     chosen.Name,
		AuthType: "oauth",
		BaseURL:  baseURLFor(chosen.EffectiveRegion()),
		Headers:  headers,
		Metadata: map[string]any{},
	}, nil
}

// Release records the outcome of a request against credential id. Unknown IDs
// are silently ignored.
func (s *Store) Release(id string, result ReleaseResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.creds[id]
	if !ok {
		return
	}
	c.UsageCount++
	if result.Error != nil {
		c.ErrorCount++
		c.LastError = result.Error.Message
		if result.Error.MarkUnhealthy {
			c.IsHealthy = false
		}
	} else {
		c.IsHealthy = true
		c.LastError = ""
	}
}

// Validate reports whether credential id is usable.
func (s *Store) Validate(id string) (*ValidationResult, error) {
	c := s.snapshot(id)
	if c == nil {
		return nil, newError(KindCredentialNotFound, "credential %s not found", id)
	}
	if !c.IsHealthy {
		return &ValidationResult{Valid: false, Message: "credential is marked unhealthy"}, nil
	}
	if c.AccessToken == "" && c.RefreshToken == "" {
		return &ValidationResult{Valid: false, Message: "credential has neither access_token nor refresh_token"}, nil
	}
	return &ValidationResult{
		Valid: true,
		Details: map[string]any{
			"token_expired":       isTokenExpired(c.Expire),
			"token_expiring_soon": isTokenExpiringSoon(c.Expire),
		},
	}, nil
}

// ApplyRefresh overwrites the stored credential with the result of a successful
// refresh_token call. Called under the exclusive lock; never called while the HTTP
// round-trip itself is in flight.
func (s *Store) ApplyRefresh(id string, result *TokenRefreshResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.creds[id]
	if !ok {
		return newError(KindCredentialNotFound, "credential %s not found", id)
	}
	c.AccessToken = result.AccessToken
	if result.RefreshToken != "" {
		c.RefreshToken = result.RefreshToken
	}
	if result.ExpiresAt != nil {
		c.Expire = result.ExpiresAt.UTC().Format(rfc3339)
	}
	c.IsHealthy = true
	c.LastError = ""
	return nil
}

// Get returns a private copy of the credential at id, for use by refresh logic.
func (s *Store) Get(id string) *Credential {
	return s.snapshot(id)
}

const rfc3339 = "2006-01-02T15:04:05Z07:00"

func isClaudeModel(model string) bool {
	const prefix = "claude-"
	return len(model) >= len(prefix) && model[:len(prefix)] == prefix
}
