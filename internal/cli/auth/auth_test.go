package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/branchd-dev/memberctl/internal/config"
)

// exerciseStore runs the single-slot contract against any TokenStore
func exerciseStore(t *testing.T, store TokenStore) {
	t.Helper()

	got, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, got, "fresh store should be empty")

	require.NoError(t, store.Set("T1"))
	got, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "T1", got)

	require.NoError(t, store.Set("T2"))
	got, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "T2", got, "Set should overwrite the slot")

	require.NoError(t, store.Remove())
	got, err = store.Get()
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, store.Remove(), "removing an empty slot should succeed")
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	exerciseStore(t, NewKeyringStore("https://portal.example.com"))
}

func TestKeyringStore_SlotsArePerServer(t *testing.T) {
	keyring.MockInit()

	a := NewKeyringStore("https://a.example.com")
	b := NewKeyringStore("https://b.example.com")
	require.NoError(t, a.Set("TA"))

	got, err := b.Get()
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = a.Get()
	require.NoError(t, err)
	assert.Equal(t, "TA", got)
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "creds", "credentials.sqlite"), "https://portal.example.com")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}

func TestSQLiteStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.sqlite")

	first, err := OpenSQLiteStore(path, "https://portal.example.com")
	require.NoError(t, err)
	require.NoError(t, first.Set("T1"))
	require.NoError(t, first.Close())

	second, err := OpenSQLiteStore(path, "https://portal.example.com")
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, err := second.Get()
	require.NoError(t, err)
	assert.Equal(t, "T1", got)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(""))
}

func TestMemoryStore_Seeded(t *testing.T) {
	got, err := NewMemoryStore("seed").Get()
	require.NoError(t, err)
	assert.Equal(t, "seed", got)
}

func TestOpen(t *testing.T) {
	keyring.MockInit()

	tests := []struct {
		name    string
		cfg     config.CredentialsConfig
		want    any
		wantErr bool
	}{
		{name: "keyring", cfg: config.CredentialsConfig{Store: config.StoreKeyring}, want: &KeyringStore{}},
		{name: "default is keyring", cfg: config.CredentialsConfig{}, want: &KeyringStore{}},
		{name: "memory", cfg: config.CredentialsConfig{Store: config.StoreMemory}, want: &MemoryStore{}},
		{
			name: "sqlite",
			cfg: config.CredentialsConfig{
				Store:        config.StoreSQLite,
				DatabasePath: filepath.Join(t.TempDir(), "c.sqlite"),
			},
			want: &SQLiteStore{},
		},
		{name: "unknown", cfg: config.CredentialsConfig{Store: "vault"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, closeFn, err := Open(tt.cfg, "https://portal.example.com")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = closeFn() })
			assert.IsType(t, tt.want, store)
		})
	}
}
