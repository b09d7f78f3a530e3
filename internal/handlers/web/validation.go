package web

import (
	"errors"
	"net/mail"
	"time"

	"github.com/quangnv/accountd/internal/users"
)

const birthDateLayout = "2006-01-02"

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("Invalid email address.")
	}
	return nil
}

func validatePassword(password string) error {
	if err := users.ValidatePassword(password); err != nil {
		return errors.New("Password must be between 8 and 72 characters.")
	}
	return nil
}

// parseBirthDate parses the optional birth date form field. An empty value
// yields a nil date without error.
func parseBirthDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	birthDate, err := time.Parse(birthDateLayout, value)
	if err != nil {
		return nil, errors.New(MsgInvalidBirthDate)
	}
	return &birthDate, nil
}

func validateRegisterForm(email string, username string, password string) map[string]string {
	formErrors := make(map[string]string)
	if err := validateEmail(email); err != nil {
		formErrors["email"] = err.Error()
	}
	// username is optional, one gets generated when the field is left blank
	if username != "" {
		if err := users.ValidateUsername(username); err != nil {
			formErrors["username"] = err.Message
		}
	}
	if err := validatePassword(password); err != nil {
		formErrors["password"] = err.Error()
	}
	return formErrors
}
