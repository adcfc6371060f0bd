// Package session keeps track of which user the local client is signed in as.
package session

import (
	"context"
	"fmt"

	"github.com/fatali-fataliyev/budget_planner/internal/auth"
	"github.com/fatali-fataliyev/budget_planner/logging"
)

// UserIDKey is the preferences key holding the signed in user identifier.
const UserIDKey = "USER_ID"

type Verifier interface {
	Verify(ctx context.Context, credentials auth.UserCredentialsPure) (auth.User, error)
}

type Directory struct {
	verifier Verifier
	prefs    Preferences
}

func NewDirectory(v Verifier, prefs Preferences) *Directory {
	return &Directory{
		verifier: v,
		prefs:    prefs,
	}
}

// Authenticate checks the credentials and, on success, persists the user
// identifier as the current session.
func (d *Directory) Authenticate(ctx context.Context, username string, password string) (string, error) {
	user, err := d.verifier.Verify(ctx, auth.UserCredentialsPure{
		UserName:      username,
		PasswordPlain: password,
	})
	if err != nil {
		return "", err
	}

	if err := d.prefs.Set(UserIDKey, user.ID); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}
	logging.Logger.Infof("user %s signed in", user.ID)
	return user.ID, nil
}

// CurrentUser returns the identifier saved by the last successful Authenticate.
func (d *Directory) CurrentUser() (string, bool, error) {
	userID, ok, err := d.prefs.Get(UserIDKey)
	if err != nil {
		return "", false, fmt.Errorf("failed to read session: %w", err)
	}
	if !ok || userID == "" {
		return "", false, nil
	}
	return userID, true, nil
}

func (d *Directory) ClearSession() error {
	if err := d.prefs.Delete(UserIDKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
