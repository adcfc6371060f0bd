package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_planner/errors"
	"github.com/fatali-fataliyev/budget_planner/logging"
	"github.com/google/uuid"
)

type Storage interface {
	SaveUser(ctx context.Context, user User) error
	// FindUserByUserName returns the first user with exactly this username.
	FindUserByUserName(ctx context.Context, username string) (User, error)
	IsUserExists(ctx context.Context, username string) (bool, error)
}

type Authenticator struct {
	storage Storage
}

func NewAuthenticator(s Storage) *Authenticator {
	return &Authenticator{storage: s}
}

// Verify looks up the first user named credentials.UserName and checks the password.
// It fails with NOT FOUND for an unknown username and INVALID CREDENTIAL on mismatch.
func (a *Authenticator) Verify(ctx context.Context, credentials UserCredentialsPure) (User, error) {
	user, err := a.storage.FindUserByUserName(ctx, credentials.UserName)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return User{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrCodeNotFound,
				Message: "User not found.",
			}
		}
		return User{}, fmt.Errorf("failed to find user: %w", err)
	}

	if !ComparePasswords(user.Password, credentials.PasswordPlain) {
		logging.Logger.Debugf("password mismatch for user %s", user.ID)
		return User{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidCredential,
			Message: "Incorrect password.",
		}
	}
	return user, nil
}

// Register creates an account and returns its identifier.
// Usernames are unique from here on; a taken one fails with CONFLICT.
func (a *Authenticator) Register(ctx context.Context, newUser NewUser) (string, error) {
	if err := newUser.ValidateUserFields(); err != nil {
		return "", err
	}

	isUserExists, err := a.storage.IsUserExists(ctx, newUser.UserName)
	if err != nil {
		return "", fmt.Errorf("failed to check username availability: %w", err)
	}
	if isUserExists {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeConflict,
			Message: fmt.Sprintf("This '%s' username already taken.", newUser.UserName),
		}
	}

	hashedPassword, err := HashPassword(newUser.PasswordPlain)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := User{
		ID:        uuid.New().String(),
		UserName:  newUser.UserName,
		Password:  hashedPassword,
		CreatedAt: time.Now().UTC(),
	}

	if err := a.storage.SaveUser(ctx, user); err != nil {
		return "", fmt.Errorf("failed to registration: %w", err)
	}
	return user.ID, nil
}
