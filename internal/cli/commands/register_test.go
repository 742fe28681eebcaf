package commands

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchd-dev/memberctl/internal/session"
)

func TestRegisterCommand(t *testing.T) {
	env := newTestEnv(t)

	in := registerInput{
		email:    "grace@example.com",
		name:     "Grace Hopper",
		password: "secret123",
		fields:   []string{"phone=555-0100", "city=Arlington"},
	}
	require.NoError(t, runRegister(context.Background(), in, env.opts()...))

	assert.NotEmpty(t, storedToken(t, env.store))
	assert.Contains(t, env.out.String(), "✓ Registration successful!")
	assert.Contains(t, env.out.String(), "Membership: Member")

	require.NoError(t, runWhoami(context.Background(), false, env.opts()...))
	assert.Contains(t, env.out.String(), "phone:")
	assert.Contains(t, env.out.String(), "555-0100")
}

func TestRegisterCommand_PromptsTwice(t *testing.T) {
	env := newTestEnv(t)

	in := registerInput{email: "grace@example.com", name: "Grace"}
	err := runRegister(context.Background(), in, env.opts(WithPasswordPrompt(answers("secret123", "different")))...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passwords do not match")
	assert.Zero(t, env.api.Hits(http.MethodPost, session.PathRegister))

	err = runRegister(context.Background(), in, env.opts(WithPasswordPrompt(answers("secret123", "secret123")))...)
	require.NoError(t, err)
}

func TestRegisterCommand_ServerRejects(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.api.SeedUser("taken@example.com", "secret123", "", nil)
	require.NoError(t, err)

	in := registerInput{email: "taken@example.com", name: "Dup", password: "secret123"}
	err = runRegister(context.Background(), in, env.opts()...)
	require.Error(t, err)
	assert.Equal(t, "registration failed: User already exists", err.Error())
	assert.Empty(t, storedToken(t, env.store))
}

func TestRegisterCommand_BadField(t *testing.T) {
	env := newTestEnv(t)

	in := registerInput{email: "a@example.com", name: "A", password: "secret123", fields: []string{"novalue"}}
	err := runRegister(context.Background(), in, env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected key=value")
}
