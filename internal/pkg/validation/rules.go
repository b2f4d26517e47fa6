package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validation limits shared between the API layer and the services
const (
	PasswordMinLength = 8
	ReasonMaxLength   = 2000
)

// IsValidEmail reports whether the value looks like an email address.
// Services use this before hitting the store so a malformed identity fails
// fast instead of producing a pointless lookup.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	return validate.Var(email, "email") == nil
}

// NormalizeEmail trims and lowercases an email so lookups are consistent
// regardless of how the caller typed it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
