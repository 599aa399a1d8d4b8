package model

import (
	"fmt"
	"strings"
)

// FilterAll is the sentinel filter value that disables a filter.
const FilterAll = "ALL"

// EnumError is returned when a string does not name a known enum member.
type EnumError struct {
	Kind  string
	Value string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Kind, e.Value)
}

func normalizeEnum(s string) string {
	s = strings.TrimSpace(strings.ToUpper(s))
	return strings.ReplaceAll(s, "-", "_")
}
