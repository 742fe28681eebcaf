package serverselect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchd-dev/memberctl/internal/cli/config"
	"github.com/branchd-dev/memberctl/internal/cli/userconfig"
)

func twoServers() *config.Config {
	return &config.Config{Servers: []config.Server{
		{URL: "https://prod.example.com", Alias: "prod"},
		{URL: "https://staging.example.com", Alias: "staging"},
	}}
}

func stubPrompt(t *testing.T, fn func(*config.Config) (*config.Server, error)) {
	t.Helper()
	orig := promptSelect
	promptSelect = fn
	t.Cleanup(func() { promptSelect = orig })
}

func TestResolveServer_Alias(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := ResolveServer(twoServers(), "staging")
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", s.URL)

	s, err = ResolveServer(twoServers(), "https://prod.example.com")
	require.NoError(t, err)
	assert.Equal(t, "prod", s.Alias)

	_, err = ResolveServer(twoServers(), "nope")
	assert.Error(t, err)
}

func TestResolveServer_Selected(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, userconfig.SetSelectedServer("https://staging.example.com"))
	stubPrompt(t, func(*config.Config) (*config.Server, error) {
		t.Fatal("prompt should not run")
		return nil, nil
	})

	s, err := ResolveServer(twoServers(), "")
	require.NoError(t, err)
	assert.Equal(t, "staging", s.Alias)
}

func TestResolveServer_SingleServerIsRemembered(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := &config.Config{Servers: []config.Server{{URL: "https://only.example.com", Alias: "only"}}}

	s, err := ResolveServer(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "only", s.Alias)

	selected, err := userconfig.GetSelectedServer()
	require.NoError(t, err)
	assert.Equal(t, "https://only.example.com", selected)
}

func TestResolveServer_StaleSelectionFallsBackToPrompt(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, userconfig.SetSelectedServer("https://removed.example.com"))

	cfg := twoServers()
	stubPrompt(t, func(c *config.Config) (*config.Server, error) {
		return &c.Servers[1], nil
	})

	s, err := ResolveServer(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, "staging", s.Alias)

	selected, err := userconfig.GetSelectedServer()
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", selected)
}

func TestResolveServer_PromptCancelled(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	stubPrompt(t, func(*config.Config) (*config.Server, error) {
		return nil, errors.New("server selection cancelled: ^C")
	})

	_, err := ResolveServer(twoServers(), "")
	assert.ErrorContains(t, err, "cancelled")
}

func TestPromptServerSelection_Empty(t *testing.T) {
	_, err := PromptServerSelection(config.DefaultConfig())
	assert.ErrorContains(t, err, "no servers configured")
}
