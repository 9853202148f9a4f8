// Package validate holds the field validation rules for account and store
// records. All failures wrap common.ErrorValidation.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/storerate/storerate/internal/common"
)

const (
	nameMinLen    = 20
	nameMaxLen    = 60
	addressMaxLen = 400
	passwordMin   = 8
	passwordMax   = 16

	// PasswordSpecialChars is the set of characters of which a password
	// must contain at least one.
	PasswordSpecialChars = "!@#$%^&*"
)

var emailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// UserName requires 20–60 characters.
func UserName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < nameMinLen || n > nameMaxLen {
		return common.ValidationError("name must be between %d and %d characters", nameMinLen, nameMaxLen)
	}
	return nil
}

// StoreName only requires a non-empty value; store names are not subject
// to the account name length rule.
func StoreName(name string) error {
	if strings.TrimSpace(name) == "" {
		return common.ValidationError("store name is required")
	}
	return nil
}

// Address allows up to 400 characters.
func Address(address string) error {
	if utf8.RuneCountInString(address) > addressMaxLen {
		return common.ValidationError("address must be at most %d characters", addressMaxLen)
	}
	return nil
}

// Email checks the standard address shape.
func Email(email string) error {
	if !emailRe.MatchString(email) {
		return common.ValidationError("invalid email address")
	}
	return nil
}

// Password requires 8–16 characters including at least one uppercase
// letter and one of PasswordSpecialChars.
func Password(password string) error {
	n := utf8.RuneCountInString(password)
	if n < passwordMin || n > passwordMax {
		return common.ValidationError("password must be %d-%d characters", passwordMin, passwordMax)
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		return common.ValidationError("password must contain an uppercase letter")
	}
	if !strings.ContainsAny(password, PasswordSpecialChars) {
		return common.ValidationError("password must contain one of %s", PasswordSpecialChars)
	}
	return nil
}

// RatingValue accepts whole values 1 through 5.
func RatingValue(value int) error {
	if value < 1 || value > 5 {
		return common.ValidationError("rating must be between 1 and 5")
	}
	return nil
}
