package commands

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/branchd-dev/memberctl/internal/cli/auth"
	"github.com/branchd-dev/memberctl/internal/cli/config"
	"github.com/branchd-dev/memberctl/internal/fakeapi"
)

type testEnv struct {
	api    *fakeapi.Server
	server *config.Server
	store  *auth.MemoryStore
	out    *bytes.Buffer
}

// newTestEnv starts a fake portal and isolates HOME and the working directory
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
	for _, key := range []string{"MEMBERCTL_EMAIL", "MEMBERCTL_PASSWORD"} {
		t.Setenv(key, "")
	}

	api := fakeapi.New()
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{
		api:    api,
		server: &config.Server{URL: srv.URL, Alias: "test-server"},
		store:  auth.NewMemoryStore(""),
		out:    &bytes.Buffer{},
	}
}

func (e *testEnv) opts(extra ...Option) []Option {
	return with([]Option{
		WithServer(e.server),
		WithTokenStore(e.store),
		WithOutput(e.out),
		WithPasswordPrompt(noPrompt),
	}, extra...)
}

// signIn seeds a member and stores a valid token for it
func (e *testEnv) signIn(t *testing.T, membershipType string, profile map[string]any) string {
	t.Helper()

	id, err := e.api.SeedUser("user@example.com", "secret123", membershipType, profile)
	require.NoError(t, err)
	token, err := e.api.IssueToken(id)
	require.NoError(t, err)
	require.NoError(t, e.store.Set(token))
	return id
}

func noPrompt(string) (string, error) {
	return "", ErrNonInteractive
}

// answers returns a prompt that replies with each answer in turn
func answers(values ...string) PasswordPrompt {
	return func(string) (string, error) {
		if len(values) == 0 {
			return "", errors.New("unexpected prompt")
		}
		v := values[0]
		values = values[1:]
		return v, nil
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(originalDir) })
}

func storedToken(t *testing.T, store auth.TokenStore) string {
	t.Helper()
	token, err := store.Get()
	require.NoError(t, err)
	return token
}
