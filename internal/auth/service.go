package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash plain password to hashed password: %w", err)
	}
	return string(hashedPassword), nil
}

// ComparePasswords checks plainPwd against a stored password.
// Records written by the mobile client keep the password in plaintext,
// those are compared by exact equality.
func ComparePasswords(storedPwd string, plainPwd string) bool {
	if isBcryptHash(storedPwd) {
		err := bcrypt.CompareHashAndPassword([]byte(storedPwd), []byte(plainPwd))
		return err == nil
	}
	return subtle.ConstantTimeCompare([]byte(storedPwd), []byte(plainPwd)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
