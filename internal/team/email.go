package team

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EmailKey returns the lowercased form of an email used for uniqueness checks.
// It matches the LOWER(email) index of the postgres repository: simple case
// mapping only, so "ß" and "ss" stay distinct.
func EmailKey(email string) string {
	// Casers are stateful, so each call gets its own.
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}
