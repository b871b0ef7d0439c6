// Package validation checks user drafts before they are sent to the
// users collection.
package validation

import (
	"strings"
	"unicode/utf8"

	"rollcall-users/models"
)

// MinStudentIDLength is the minimum number of characters in a student ID.
const MinStudentIDLength = 10

// Messages shown in the screen's shared error area.
const (
	MsgMissingFields     = "please fill in all fields"
	MsgStudentIDTooShort = "student ID must be at least 10 characters."
)

// Error is a validation failure. Message is meant for the end user.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validate applies the draft rules in order and returns the first failure,
// or nil when the draft may be submitted.
func Validate(d models.Draft) error {
	if strings.TrimSpace(d.FullName) == "" ||
		strings.TrimSpace(d.StudentID) == "" ||
		strings.TrimSpace(d.ClassName) == "" {
		return &Error{Message: MsgMissingFields}
	}
	// Length is checked on the raw value, surrounding spaces included.
	if utf8.RuneCountInString(d.StudentID) < MinStudentIDLength {
		return &Error{Message: MsgStudentIDTooShort}
	}
	return nil
}
