// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

package username_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phamduylong/authgate/pkg/username"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		email       string
		want        string
	}{
		{"name_lowercased_and_squashed", "J Doe", "jdoe@example.com", "jdoe"},
		{"multi_word_name", "Jane Q Public", "jq@example.com", "janeqpublic"},
		{"accents_folded", "José García", "jg@example.com", "josegarcia"},
		{"empty_name_falls_back_to_email", "", "first.last@example.com", "first.last"},
		{"whitespace_only_name_falls_back", "   ", "user@example.com", "user"},
		{"tabs_and_newlines_removed", "A\tB\nC", "abc@example.com", "abc"},
		{"already_clean", "jdoe", "jdoe@example.com", "jdoe"},
		{"email_without_at_sign", "", "rawvalue", "rawvalue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, username.Derive(tt.displayName, tt.email))
		})
	}
}
