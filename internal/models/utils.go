package models

import (
	"strings"

	"github.com/google/uuid"
)

// NewOutingID generates the opaque unique identifier assigned to a record at
// normalization time. Independent of any source-local id, so identifiers are
// not stable across runs unless the URL key already exists in the store.
func NewOutingID() string {
	return uuid.New().String()
}

// Truncate clips s to at most max runes.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// IsValidURL performs basic URL validation
func IsValidURL(url string) bool {
	if url == "" {
		return false
	}

	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// CleanTitle trims whitespace and collapses the non-breaking spaces that
// WordPress themes like to emit inside entry titles.
func CleanTitle(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}
