package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cliauth "github.com/branchd-dev/memberctl/internal/cli/auth"
)

func TestProfileSetCommand(t *testing.T) {
	env := newTestEnv(t)
	id := env.signIn(t, "", map[string]any{"name": "A", "city": "Paris"})

	require.NoError(t, runProfileSet(context.Background(), []string{"name=B", "phone=555-0100"}, env.opts()...))

	out := env.out.String()
	assert.Contains(t, out, "✓ Profile updated")
	assert.Contains(t, out, "Paris", "fields not in the update are kept")

	profile, ok := env.api.Profile(id)
	require.True(t, ok)
	assert.Equal(t, "B", profile["name"])
	assert.Equal(t, "555-0100", profile["phone"])
}

func TestProfileSetCommand_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	err := runProfileSet(context.Background(), []string{"name=B"}, env.opts()...)
	assert.ErrorIs(t, err, cliauth.ErrNotAuthenticated)
}

func TestProfileSetCommand_InvalidArgs(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t, "", nil)

	err := runProfileSet(context.Background(), []string{"=x"}, env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected key=value")
}
