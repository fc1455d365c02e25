package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleDrawer  Role = "drawer"
	RoleGuesser Role = "guesser"
)

func ParseRole(raw string) (Role, error) {
	switch role := Role(strings.TrimSpace(raw)); role {
	case RoleDrawer, RoleGuesser:
		return role, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
}

// DefaultName is shown while a slot has no chosen name.
func (r Role) DefaultName() string {
	if r == RoleDrawer {
		return "Drawer"
	}
	return "Guesser"
}
