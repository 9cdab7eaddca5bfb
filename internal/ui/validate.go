package ui

import (
	"errors"
	"regexp"
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// validateUsername mirrors the server's registration constraints so obvious
// mistakes never cost a round-trip.
func validateUsername(username string) error {
	if len(username) < 3 || len(username) > 50 {
		return errors.New("username must be between 3 and 50 characters")
	}
	if !usernameRe.MatchString(username) {
		return errors.New("username may only contain letters, numbers, and underscores")
	}
	return nil
}

func validateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return errors.New("that does not look like an email address")
	}
	return nil
}

// validatePassword applies the client-side password rule: at least 8
// characters, with at least one letter and one digit. The server enforces
// its own stricter policy; its message wins when the two disagree.
func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		return errors.New("password must contain at least one letter and one digit")
	}
	return nil
}
