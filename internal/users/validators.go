package users

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/quangnv/accountd/params"
)

// ValidateUsername runs the username shape rules in declared order and
// reports the first violated one. The rules are layered, not independent:
// the charset check comes first so the later rules only ever see [a-zA-Z0-9_].
func ValidateUsername(username string) *ValidationError {
	// byte-wise scan: every byte of a multi-byte rune is outside the
	// accepted set, so non-ASCII input can never slip through
	for i := 0; i < len(username); i++ {
		if !isUsernameChar(username[i]) {
			return validationError(CodeInvalidUsername,
				"Username must only contain letters, numbers and underscores.")
		}
	}
	if strings.HasPrefix(username, "_") || strings.HasSuffix(username, "_") {
		return validationError(CodeUsernameBoundary,
			"Username can't start or end with an underscore.")
	}
	if username != "" && isDigit(username[0]) {
		return validationError(CodeUsernameLeadingDigit,
			"Username can't start with a number.")
	}
	if strings.Contains(username, "__") {
		return validationError(CodeConsecutiveUnderscores,
			"Username can't contain consecutive underscores.")
	}
	if len(username) < params.MinUsernameLength {
		return validationError(CodeUsernameTooShort,
			"Username must be at least 5 characters.")
	}
	return nil
}

// ValidateAge computes the whole-years age at now and rejects anyone younger
// than the minimum. A year counts only once the month and day have passed.
func ValidateAge(birthDate time.Time, now time.Time) (int, *ValidationError) {
	age := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		age--
	}
	if age < params.MinAccountAge {
		return age, validationError(CodeUnderage,
			"You must be at least 15 years old to use this service.")
	}
	return age, nil
}

const usernameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789_"

// GenerateUsername produces a random username of the fixed generated length,
// re-rolling until the shape rules pass. Store-level uniqueness is enforced
// by the caller retrying on insert collision.
func GenerateUsername() string {
	for {
		b := make([]byte, params.AutoUsernameLength)
		for i := range b {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(usernameAlphabet))))
			if err != nil {
				panic(err)
			}
			b[i] = usernameAlphabet[n.Int64()]
		}
		if ValidateUsername(string(b)) == nil {
			return string(b)
		}
	}
}

func isUsernameChar(c byte) bool {
	return c == '_' || isDigit(c) ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
