package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	appErrors "github.com/fatali-fataliyev/budget_planner/errors"
	"github.com/fatali-fataliyev/budget_planner/internal/events"
	"github.com/fatali-fataliyev/budget_planner/internal/session"
	"github.com/fatali-fataliyev/budget_planner/internal/storage"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store *storage.InMemoryStorage
	prefs string
	out   *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	return &harness{
		store: storage.NewInMemoryStorage(),
		prefs: filepath.Join(t.TempDir(), "preferences.env"),
		out:   &bytes.Buffer{},
	}
}

// exec runs one command with a fresh app, like a new process sharing the store and preferences file.
func (h *harness) exec(args ...string) (string, error) {
	h.out.Reset()
	a := newApp(h.store, events.NopPublisher{}, session.NewFilePreferences(h.prefs), h.out)
	err := a.dispatch(context.Background(), args)
	return h.out.String(), err
}

func TestCLIFlow(t *testing.T) {
	h := newHarness(t)

	_, err := h.exec("whoami")
	require.True(t, errors.Is(err, appErrors.ErrAuth))

	_, err = h.exec("register", "alice", "correct")
	require.NoError(t, err)

	whoami, err := h.exec("whoami")
	require.NoError(t, err)
	require.NotEmpty(t, strings.TrimSpace(whoami))

	_, err = h.exec("budget", "set", "abc")
	require.True(t, errors.Is(err, appErrors.ErrInvalidAmount))

	_, err = h.exec("budget", "set", "5000")
	require.NoError(t, err)

	out, err := h.exec("budget", "get")
	require.NoError(t, err)
	require.Contains(t, out, "5000")

	out, err = h.exec("tx", "add", "-name", "salary", "10.7")
	require.NoError(t, err)
	require.Contains(t, out, "Transaction added")

	_, err = h.exec("tx", "add", "-name", "refund", "--", "-3.2")
	require.NoError(t, err)

	out, err = h.exec("tx", "list")
	require.NoError(t, err)
	require.Contains(t, out, "salary")
	require.Contains(t, out, "refund")
	require.Contains(t, out, "Total spend: 7")

	out, err = h.exec("summary")
	require.NoError(t, err)
	require.Contains(t, out, "Budget:      5000")
	require.Contains(t, out, "Remaining:   4993")

	_, err = h.exec("tx", "rm", "missing")
	require.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = h.exec("tx", "receipt", "missing", "")
	require.True(t, errors.Is(err, appErrors.ErrInvalidInput))

	_, err = h.exec("logout")
	require.NoError(t, err)
	_, err = h.exec("logout")
	require.NoError(t, err)

	_, err = h.exec("summary")
	require.True(t, errors.Is(err, appErrors.ErrAuth))
}

func TestCLILogin(t *testing.T) {
	h := newHarness(t)

	_, err := h.exec("register", "alice", "correct")
	require.NoError(t, err)
	_, err = h.exec("logout")
	require.NoError(t, err)

	_, err = h.exec("login", "alice", "wrong")
	require.True(t, errors.Is(err, appErrors.ErrInvalidCredential))

	_, err = h.exec("login", "bob", "anything")
	require.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = h.exec("login", "alice", "correct")
	require.NoError(t, err)

	_, err = h.exec("register", "alice", "again")
	require.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestCLIUsage(t *testing.T) {
	h := newHarness(t)

	tests := [][]string{
		{},
		{"unknown"},
		{"login", "only-user"},
	}
	for _, args := range tests {
		out, err := h.exec(args...)
		require.ErrorIs(t, err, errUsage)
		require.Contains(t, out, "usage: planner")
	}
}
