// Package phone normalises user-entered phone numbers to E.164.
package phone

import (
	"fmt"
	"strings"

	"github.com/family-connect/internal/domain"
)

// Normalize strips formatting characters and returns "+<digits>".
// Ten-digit national numbers are prefixed with defaultCountryCode.
func Normalize(raw, defaultCountryCode string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("phone is required: %w", domain.ErrBadRequest)
	}
	international := strings.HasPrefix(s, "+") || strings.HasPrefix(s, "00")
	s = strings.TrimPrefix(s, "+")
	if strings.HasPrefix(s, "00") {
		s = s[2:]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", fmt.Errorf("phone contains invalid character %q: %w", r, domain.ErrBadRequest)
		}
	}
	digits := b.String()

	if !international {
		digits = strings.TrimLeft(digits, "0")
		if len(digits) == 10 {
			digits = defaultCountryCode + digits
		}
	}
	if len(digits) < 10 || len(digits) > 15 {
		return "", fmt.Errorf("phone must have 10 to 15 digits: %w", domain.ErrBadRequest)
	}
	return "+" + digits, nil
}
