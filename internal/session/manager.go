package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Manager owns the session state machine.
//
// The mutex guards only the in-memory snapshot and makes each commit
// (persist, header, memory) atomic with respect to other commits. It is never
// held across a network call, so concurrent operations resolve last-write-wins.
type Manager struct {
	store  CredentialStore
	client AuthClient
	logger zerolog.Logger

	mu      sync.Mutex
	token   string
	user    Profile
	loading bool

	// generation changes whenever the credential changes; results of calls
	// started under an older generation are discarded.
	generation uint64
	// verified is the generation whose identity check has been started
	verified uint64

	subMu       sync.Mutex
	subscribers map[int]func(Status)
	nextSubID   int
}

// New reads the persisted credential and primes the client's Authorization
// slot. The session starts Loading until Restore completes.
func New(store CredentialStore, client AuthClient, opts ...Option) *Manager {
	m := &Manager{
		store:       store,
		client:      client,
		logger:      zerolog.Nop(),
		loading:     true,
		generation:  1,
		subscribers: make(map[int]func(Status)),
	}
	for _, opt := range opts {
		opt(m)
	}

	token, err := store.Get()
	if err != nil {
		m.logger.Warn().Err(err).Msg("Failed to read stored credential")
		token = ""
	}
	m.token = token
	m.applyHeader(token)

	return m
}

// Restore runs the identity check for the current credential.
// It is a no-op once the check has run for this credential.
func (m *Manager) Restore(ctx context.Context) {
	m.mu.Lock()
	if m.token == "" {
		changed := m.loading
		m.loading = false
		m.mu.Unlock()
		if changed {
			m.notify()
		}
		return
	}
	if m.verified == m.generation {
		m.mu.Unlock()
		return
	}
	m.verified = m.generation
	gen := m.generation
	m.mu.Unlock()

	m.verify(ctx, gen)
}

// verify performs GET /api/auth/me and commits the outcome unless the
// credential changed while the request was in flight.
func (m *Manager) verify(ctx context.Context, gen uint64) {
	var resp struct {
		Data Profile `json:"data"`
	}
	err := m.client.Get(ctx, PathMe, &resp)

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		m.logger.Debug().Msg("Discarding identity check for a replaced credential")
		return
	}

	if err != nil {
		m.logger.Warn().Err(err).Int("status", statusOf(err)).Msg("Stored credential rejected, signing out")
		if rmErr := m.store.Remove(); rmErr != nil {
			m.logger.Error().Err(rmErr).Msg("Failed to remove stored credential")
		}
		m.client.ClearAuthorization()
		m.token = ""
		m.user = nil
		m.generation++
	} else {
		m.user = resp.Data
	}
	m.loading = false
	m.mu.Unlock()

	m.notify()
}

// Reset replaces the credential from outside the manager's own operations
// (for example a token handed over by another component) and re-runs the
// identity check. An empty token signs out.
func (m *Manager) Reset(ctx context.Context, token string) {
	m.mu.Lock()
	if token == m.token && m.verified == m.generation {
		m.mu.Unlock()
		return
	}

	var err error
	if token == "" {
		err = m.store.Remove()
	} else {
		err = m.store.Set(token)
	}
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to persist reset credential")
	}
	gen := m.adopt(token)
	m.mu.Unlock()

	m.notify()
	if token != "" {
		m.verify(ctx, gen)
	}
}

// Sync re-reads the store and, if another process changed the credential,
// adopts the new value and re-runs the identity check.
func (m *Manager) Sync(ctx context.Context) {
	token, err := m.store.Get()
	if err != nil {
		m.logger.Warn().Err(err).Msg("Failed to read stored credential")
		return
	}

	m.mu.Lock()
	if token == m.token {
		m.mu.Unlock()
		return
	}
	gen := m.adopt(token)
	m.mu.Unlock()

	m.notify()
	if token != "" {
		m.verify(ctx, gen)
	}
}

// adopt installs token as the unverified current credential.
// Must be called with m.mu held.
func (m *Manager) adopt(token string) uint64 {
	m.applyHeader(token)
	m.token = token
	m.user = nil
	m.generation++
	m.loading = token != ""
	if token != "" {
		m.verified = m.generation
	}
	return m.generation
}

func (m *Manager) applyHeader(token string) {
	if token == "" {
		m.client.ClearAuthorization()
		return
	}
	m.client.SetAuthorization("Bearer " + token)
}

type authResponse struct {
	Token string  `json:"token"`
	Data  Profile `json:"data"`
}

// Login authenticates with identifier and secret
func (m *Manager) Login(ctx context.Context, identifier, secret string) Result {
	body := map[string]string{
		"email":    identifier,
		"password": secret,
	}
	return m.authenticate(ctx, PathLogin, body, MsgLoginFailed)
}

// Register creates an account from profileData and signs in
func (m *Manager) Register(ctx context.Context, profileData map[string]any) Result {
	if profileData == nil {
		profileData = map[string]any{}
	}
	return m.authenticate(ctx, PathRegister, profileData, MsgRegistrationFailed)
}

func (m *Manager) authenticate(ctx context.Context, path string, body any, fallback string) Result {
	var resp authResponse
	if err := m.client.Post(ctx, path, body, &resp); err != nil {
		m.logger.Warn().Err(err).Int("status", statusOf(err)).Str("path", path).Msg(fallback)
		return failed(messageFor(err, fallback))
	}
	if resp.Token == "" {
		m.logger.Warn().Str("path", path).Msg("Server returned no token")
		return failed(fallback)
	}

	m.mu.Lock()
	if err := m.store.Set(resp.Token); err != nil {
		m.mu.Unlock()
		m.logger.Error().Err(err).Msg("Failed to persist credential")
		return failed(fallback)
	}
	m.applyHeader(resp.Token)
	m.token = resp.Token
	m.user = resp.Data
	m.generation++
	m.verified = m.generation
	m.loading = false
	m.mu.Unlock()

	m.notify()
	return ok()
}

// Logout clears the credential everywhere. It cannot fail and is idempotent.
func (m *Manager) Logout() {
	m.mu.Lock()
	if err := m.store.Remove(); err != nil {
		m.logger.Error().Err(err).Msg("Failed to remove stored credential")
	}
	m.client.ClearAuthorization()
	if m.token != "" || m.user != nil {
		m.generation++
	}
	m.token = ""
	m.user = nil
	m.loading = false
	m.mu.Unlock()

	m.notify()
}

// UpdateProfile sends partialData and merges the server's echo into the
// current profile. Server fields win; fields absent from the echo are kept.
func (m *Manager) UpdateProfile(ctx context.Context, partialData map[string]any) Result {
	m.mu.Lock()
	gen := m.generation
	m.mu.Unlock()

	var resp struct {
		Data Profile `json:"data"`
	}
	if err := m.client.Put(ctx, PathUpdateProfile, partialData, &resp); err != nil {
		m.logger.Warn().Err(err).Int("status", statusOf(err)).Msg(MsgUpdateProfileFailed)
		return failed(messageFor(err, MsgUpdateProfileFailed))
	}

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		m.logger.Debug().Msg("Credential changed during profile update, not merging")
		return ok()
	}
	m.user = m.user.Merge(resp.Data)
	m.mu.Unlock()

	m.notify()
	return ok()
}

// ChangePassword forwards passwords unchanged. The session is unaffected.
func (m *Manager) ChangePassword(ctx context.Context, passwords map[string]any) Result {
	if err := m.client.Put(ctx, PathChangePassword, passwords, nil); err != nil {
		m.logger.Warn().Err(err).Int("status", statusOf(err)).Msg(MsgChangePasswordFailed)
		return failed(messageFor(err, MsgChangePasswordFailed))
	}
	return ok()
}

// Status returns a snapshot of the derived session state
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

func (m *Manager) statusLocked() Status {
	return Status{
		CurrentUser:     m.user.Clone(),
		Loading:         m.loading,
		IsAuthenticated: m.token != "",
		IsAdmin:         m.user.IsAdmin(),
	}
}

func (m *Manager) CurrentUser() Profile {
	return m.Status().CurrentUser
}

func (m *Manager) Loading() bool {
	return m.Status().Loading
}

// IsAuthenticated reports whether a credential is present, verified or not
func (m *Manager) IsAuthenticated() bool {
	return m.Status().IsAuthenticated
}

func (m *Manager) IsAdmin() bool {
	return m.Status().IsAdmin
}

// Token returns the current raw credential
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}
