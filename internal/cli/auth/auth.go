package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "memberctl-cli"
)

// ErrNotAuthenticated is returned when a command needs a session but none is stored
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'memberctl login' first")

// getKeyringKey returns a unique key for storing tokens per server
func getKeyringKey(serverURL string) string {
	return fmt.Sprintf("token-%s", serverURL)
}

// KeyringStore persists the bearer token in the OS keychain/credential manager.
// Each server URL gets its own slot.
type KeyringStore struct {
	serverURL string
}

// NewKeyringStore returns a store bound to serverURL
func NewKeyringStore(serverURL string) *KeyringStore {
	return &KeyringStore{serverURL: serverURL}
}

// Get retrieves the token, returning "" when none is stored
func (s *KeyringStore) Get() (string, error) {
	token, err := keyring.Get(service, getKeyringKey(s.serverURL))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// Set saves the token
func (s *KeyringStore) Set(token string) error {
	if err := keyring.Set(service, getKeyringKey(s.serverURL), token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Remove deletes the token. Removing a missing token is not an error.
func (s *KeyringStore) Remove() error {
	if err := keyring.Delete(service, getKeyringKey(s.serverURL)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
