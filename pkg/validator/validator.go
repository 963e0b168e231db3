package validator

import (
	"net/mail"
	"regexp"
	"strings"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func ValidateRegister(username, password, email string) ValidationErrors {
	errs := make(ValidationErrors)

	validateUsername(username, errs)
	validatePassword(password, errs)
	validateEmail(email, errs)

	return errs
}

func ValidateProfile(username, email string) ValidationErrors {
	errs := make(ValidationErrors)

	// Empty fields mean "keep current value" on profile edits.
	if username != "" {
		validateUsername(username, errs)
	}
	if email != "" {
		validateEmail(email, errs)
	}

	return errs
}

func ValidatePassword(password string) ValidationErrors {
	errs := make(ValidationErrors)
	validatePassword(password, errs)
	return errs
}

func ValidateMessage(channel, body string) ValidationErrors {
	errs := make(ValidationErrors)

	channel = strings.TrimSpace(channel)
	if channel == "" {
		errs.Add("channel", "Channel is required")
	} else if len(channel) > 100 {
		errs.Add("channel", "Channel name is too long")
	}

	if body == "" {
		errs.Add("message", "Message body is required")
	} else if len(body) > 10000 {
		errs.Add("message", "Message is too long")
	}

	return errs
}

func validateUsername(username string, errs ValidationErrors) {
	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) < 2 {
		errs.Add("username", "Username must be at least 2 characters")
	} else if len(username) > 50 {
		errs.Add("username", "Username is too long")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers, _ and -")
	}
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
	} else if len(password) > 128 {
		errs.Add("password", "Password is too long")
	}
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		return // email is optional
	}
	if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}
}
