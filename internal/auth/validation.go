package auth

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/rogerio-castellano/inventory-changelog/internal/apperr"
)

const (
	maxUsernameLength = 150
	minPasswordLength = 8
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

func validateUsername(ve *apperr.ValidationError, username string) {
	switch {
	case username == "":
		ve.Add("username", "This field is required.")
	case len([]rune(username)) > maxUsernameLength:
		ve.Add("username", "Ensure this field has no more than 150 characters.")
	case !usernamePattern.MatchString(username):
		ve.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
}

func validateEmail(ve *apperr.ValidationError, email string) {
	if email == "" {
		ve.Add("email", "This field is required.")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		ve.Add("email", "Enter a valid email address.")
	}
}

func validatePassword(ve *apperr.ValidationError, password string) {
	switch {
	case password == "":
		ve.Add("password", "This field is required.")
	case len(password) < minPasswordLength:
		ve.Add("password", "Ensure this field has at least 8 characters.")
	}
}

func duplicateError(field string) error {
	return apperr.NewValidationError(apperr.FieldError{
		Field:       field,
		Description: "A user with that " + field + " already exists.",
	})
}
