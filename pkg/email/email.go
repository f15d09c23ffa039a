// Package email holds small address helpers shared by validation and the
// mailer templates.
package email

import (
	"regexp"
	"strings"
	"unicode"
)

var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Valid reports whether addr looks like a deliverable address.
func Valid(addr string) bool {
	return addressPattern.MatchString(addr)
}

// DeriveNameFromEmail guesses a greeting name from the local part of an
// address, for visitors who registered without a name.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "Visitor", "Visitor"
	}

	first := capitalize(parts[0])
	last := "Visitor"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
