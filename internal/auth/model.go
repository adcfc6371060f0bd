package auth

import (
	"fmt"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_planner/errors"
)

const (
	MAX_LENGTH_USERNAME = 255
	MAX_PASSWORD_LENGTH = 72
)

// User is the credential record stored under users/{id}.
// Password holds a bcrypt hash, or plaintext for accounts created by the mobile client.
type User struct {
	ID        string
	UserName  string
	Password  string
	CreatedAt time.Time
}

type NewUser struct {
	UserName      string
	PasswordPlain string
}

type UserCredentialsPure struct {
	UserName      string
	PasswordPlain string
}

func (newUser NewUser) ValidateUserFields() error {
	if newUser.UserName == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidInput,
			Message: "Username cannot be empty!",
		}
	}
	if len(newUser.UserName) > MAX_LENGTH_USERNAME {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidInput,
			Message: fmt.Sprintf("Username so long, maximum length is %d", MAX_LENGTH_USERNAME),
		}
	}
	if newUser.PasswordPlain == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidInput,
			Message: "Password cannot be empty!",
		}
	}
	if len(newUser.PasswordPlain) > MAX_PASSWORD_LENGTH {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrCodeInvalidInput,
			Message: fmt.Sprintf("Password so long, maximum length is %d", MAX_PASSWORD_LENGTH),
		}
	}
	return nil
}
