// Package token generates and validates the short session codes users
// share with the desktop agent.
package token

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Generated tokens look like "A1B2-C3D4": the first eight hex characters
// of a random UUID, uppercased, with a hyphen in the middle. Validation
// only enforces the XXXX-XXXX shape, so tokens minted elsewhere may use
// any uppercase alphanumerics.
var pattern = regexp.MustCompile(`^[0-9A-Z]{4}-[0-9A-Z]{4}$`)

// Generate returns a fresh token. It does not guarantee uniqueness; the
// store's unique constraint is the arbiter and callers retry on collision.
func Generate() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return raw[:4] + "-" + raw[4:]
}

// Valid reports whether s is a well-formed session token.
func Valid(s string) bool {
	return pattern.MatchString(s)
}
