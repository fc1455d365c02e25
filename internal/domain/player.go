package domain

import (
	"strings"
	"unicode"

	"github.com/hilthontt/oekaki/internal/infrastructure/validate"
)

const (
	DefaultMaxNameLength   = 20
	DefaultMaxRoomIDLength = 64
)

// SanitizeName trims the name, strips control characters and truncates it
// to maxLen runes. An empty result falls back to the role's default name.
func SanitizeName(raw string, role Role, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxNameLength
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.TrimSpace(cleaned)

	if runes := []rune(cleaned); len(runes) > maxLen {
		cleaned = strings.TrimSpace(string(runes[:maxLen]))
	}

	if cleaned == "" {
		return role.DefaultName()
	}
	return cleaned
}

// NormalizeRoomID trims the id and checks it is usable as a registry key.
func NormalizeRoomID(raw string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxRoomIDLength
	}

	id := strings.TrimSpace(raw)
	validateRoomID := validate.Field("roomId",
		validate.Required(),
		validate.MaxLength(maxLen),
		validate.Printable(),
	)
	if err := validateRoomID(id); err != nil {
		return "", &InputError{Err: err}
	}

	return id, nil
}

// InputError marks a malformed client payload.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return e.Err.Error() }

func (e *InputError) Unwrap() error { return e.Err }

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }
