package utils

import "strings"

// NewNullString is a helper for string pointers, returning nil if string is empty.
// Useful for fields that are optional and should be NULL in DB if not provided.
func NewNullString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// TrimPtr trims an optional string and drops it when nothing is left.
func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return NewNullString(*s)
}
