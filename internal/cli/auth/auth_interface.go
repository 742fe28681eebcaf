package auth

import (
	"fmt"

	"github.com/branchd-dev/memberctl/internal/config"
)

// TokenStore is a single-slot credential store.
// This allows us to swap the keyring for a file or memory in tests and headless hosts.
type TokenStore interface {
	Get() (string, error)
	Set(token string) error
	Remove() error
}

var (
	_ TokenStore = (*KeyringStore)(nil)
	_ TokenStore = (*SQLiteStore)(nil)
	_ TokenStore = (*MemoryStore)(nil)
)

// Open returns the token store selected by cfg for serverURL.
// The returned close func releases any resources held by the store.
func Open(cfg config.CredentialsConfig, serverURL string) (TokenStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store {
	case config.StoreKeyring, "":
		return NewKeyringStore(serverURL), noop, nil
	case config.StoreSQLite:
		s, err := OpenSQLiteStore(cfg.DatabasePath, serverURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.StoreMemory:
		return NewMemoryStore(""), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown credential store %q", cfg.Store)
	}
}
