package validate

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/family-connect/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	minNameLen = 2
	maxNameLen = 60
)

// PersonName collapses whitespace and title-cases raw, then checks it is
// 2 to 60 characters long.
func PersonName(raw string) (string, error) {
	// Casers are stateful; build one per call.
	name := cases.Title(language.Und).String(strings.Join(strings.Fields(raw), " "))
	if n := utf8.RuneCountInString(name); n < minNameLen || n > maxNameLen {
		return "", fmt.Errorf("name must be %d to %d characters: %w", minNameLen, maxNameLen, domain.ErrBadRequest)
	}
	return name, nil
}

// PastDate checks value is a YYYY-MM-DD date not after now. An empty value
// passes; callers use it to clear the field.
func PastDate(field, value string, now time.Time) error {
	if value == "" {
		return nil
	}
	d, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return fmt.Errorf("%s must be YYYY-MM-DD: %w", field, domain.ErrBadRequest)
	}
	if d.After(now) {
		return fmt.Errorf("%s cannot be in the future: %w", field, domain.ErrBadRequest)
	}
	return nil
}
