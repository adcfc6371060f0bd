package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	appErrors "github.com/fatali-fataliyev/budget_planner/errors"
	"github.com/fatali-fataliyev/budget_planner/internal/auth"
	"github.com/stretchr/testify/require"
)

type MockVerifier struct {
	users map[string]auth.User
}

func (m *MockVerifier) Verify(ctx context.Context, credentials auth.UserCredentialsPure) (auth.User, error) {
	user, ok := m.users[credentials.UserName]
	if !ok {
		return auth.User{}, appErrors.ErrorResponse{Code: appErrors.ErrCodeNotFound, Message: "User not found."}
	}
	if user.Password != credentials.PasswordPlain {
		return auth.User{}, appErrors.ErrorResponse{Code: appErrors.ErrCodeInvalidCredential, Message: "Incorrect password."}
	}
	return user, nil
}

func newTestDirectory(t *testing.T) (*Directory, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs", "preferences.env")
	verifier := &MockVerifier{users: map[string]auth.User{
		"alice": {ID: "alice-id", UserName: "alice", Password: "correct"},
	}}
	return NewDirectory(verifier, NewFilePreferences(path)), path
}

func TestAuthenticatePersistsUser(t *testing.T) {
	d, path := newTestDirectory(t)
	ctx := context.Background()

	_, ok, err := d.CurrentUser()
	require.NoError(t, err)
	require.False(t, ok)

	userID, err := d.Authenticate(ctx, "alice", "correct")
	require.NoError(t, err)
	require.Equal(t, "alice-id", userID)

	current, ok, err := d.CurrentUser()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice-id", current)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), `USER_ID="alice-id"`)
}

func TestSessionSurvivesRestart(t *testing.T) {
	d, path := newTestDirectory(t)
	_, err := d.Authenticate(context.Background(), "alice", "correct")
	require.NoError(t, err)

	restarted := NewDirectory(&MockVerifier{}, NewFilePreferences(path))
	current, ok, err := restarted.CurrentUser()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice-id", current)
}

func TestAuthenticateFailureKeepsPreviousSession(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()

	_, err := d.Authenticate(ctx, "alice", "correct")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantCode string
	}{
		{name: "wrong password", username: "alice", password: "wrong", wantCode: appErrors.ErrCodeInvalidCredential},
		{name: "unknown user", username: "bob", password: "anything", wantCode: appErrors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Authenticate(ctx, tt.username, tt.password)
			require.Equal(t, tt.wantCode, appErrors.CodeOf(err))

			current, ok, err := d.CurrentUser()
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "alice-id", current)
		})
	}
}

func TestClearSessionIsIdempotent(t *testing.T) {
	d, _ := newTestDirectory(t)

	require.NoError(t, d.ClearSession())

	_, err := d.Authenticate(context.Background(), "alice", "correct")
	require.NoError(t, err)

	require.NoError(t, d.ClearSession())
	require.NoError(t, d.ClearSession())

	_, ok, err := d.CurrentUser()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFilePreferencesKeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.env")
	prefs := NewFilePreferences(path)

	require.NoError(t, prefs.Set("THEME", "dark"))
	require.NoError(t, prefs.Set(UserIDKey, "u-1"))
	require.NoError(t, prefs.Delete(UserIDKey))

	theme, ok, err := prefs.Get("THEME")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "dark", theme)
}
