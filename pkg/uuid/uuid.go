// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

// Package uuid generates time-ordered unique identifiers.
//
// All entity identifiers in the application are UUIDv7 strings, giving
// index-friendly insert order in PostgreSQL while staying globally unique.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a new UUIDv7 string.
func New() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("uuid: generation failed: %w", err)
	}
	return id.String(), nil
}

// Must returns a new UUIDv7 string and panics on failure. Intended for
// tests and fixtures, not request paths.
func Must() string {
	id, err := New()
	if err != nil {
		panic(err)
	}
	return id
}

// IsValid reports whether value parses as a UUID of any version.
func IsValid(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}
