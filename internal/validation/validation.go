// Package validation collects field level input errors.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects multiple field errors. A nil or empty Errors is valid input.
type Errors struct {
	Fields []FieldError `json:"errors"`
}

func (e *Errors) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *Errors) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *Errors) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + " " + f.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns e as an error, or nil when nothing was added.
func (e *Errors) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// New returns an error for a single field.
func New(field, message string) error {
	e := &Errors{}
	e.Add(field, message)
	return e
}

// Require adds an error when value is blank.
func (e *Errors) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "is required")
	}
}

var (
	phonePattern    = regexp.MustCompile(`^(09|03|07|08|05)\d{8}$`)
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)
	passwordClasses = []*regexp.Regexp{
		regexp.MustCompile(`[a-z]`),
		regexp.MustCompile(`[A-Z]`),
		regexp.MustCompile(`\d`),
		regexp.MustCompile(`[@$!%*?&]`),
	}
)

// ValidPhone reports whether phone is a ten digit mobile number with a
// known carrier prefix.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// StrongPassword reports whether password has at least eight characters from
// [A-Za-z0-9@$!%*?&] including a lowercase letter, an uppercase letter, a
// digit and one of @$!%*?&.
func StrongPassword(password string) bool {
	if !passwordCharset.MatchString(password) {
		return false
	}
	for _, class := range passwordClasses {
		if !class.MatchString(password) {
			return false
		}
	}
	return true
}

// Phone adds an error for a malformed phone number. Blank values are left to
// Require.
func (e *Errors) Phone(field, value string) {
	if value != "" && !ValidPhone(value) {
		e.Add(field, "must be a valid phone number")
	}
}

// Password adds an error for a weak password. Blank values are left to
// Require.
func (e *Errors) Password(field, value string) {
	if value != "" && !StrongPassword(value) {
		e.Add(field, "must be at least 8 characters with upper and lower case letters, a digit and a special character (@$!%*?&)")
	}
}

// OneOf adds an error when a non-empty value is outside allowed.
func (e *Errors) OneOf(field, value string, allowed ...string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	e.Add(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

func (e *Errors) NonNegative(field string, value decimal.Decimal) {
	if value.IsNegative() {
		e.Add(field, "must not be negative")
	}
}

func (e *Errors) Positive(field string, value int64) {
	if value <= 0 {
		e.Add(field, "must be a positive integer")
	}
}
