package domain

import "strings"

// User is a registered account. The password hash never serializes.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// ValidateNewUser checks registration input before hashing.
func ValidateNewUser(username, email, password string) error {
	if len(username) < 2 || len(username) > 20 {
		return &ValidationError{Field: "username", Reason: "must be between 2 and 20 characters"}
	}
	if !strings.Contains(email, "@") {
		return &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if len(password) < 7 {
		return &ValidationError{Field: "password", Reason: "must be at least 7 characters"}
	}
	return nil
}
