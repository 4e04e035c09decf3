// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

// Package username derives login handles from federated profile data.
//
// Providers hand us a free-form display name ("J Doe", "Đặng Văn A") and an
// email address. The derived handle is what the rest of the system treats as
// the unique username, so derivation must be deterministic and produce only
// characters the username validator accepts.
package username

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer decomposes accented characters and strips the combining
// marks, turning "Đặng" into "Đang" and "José" into "Jose". The stray
// non-ASCII runes that survive decomposition are handled separately.
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Derive computes the base username candidate for a federated identity.
//
// # Rules
//
//  1. Prefer the display name: lowercase it and remove all whitespace.
//  2. Fall back to the part of the email before the "@".
//  3. Accents are folded to their ASCII base letters either way.
//
// The result is a candidate only. Uniqueness against existing accounts is
// the caller's responsibility.
func Derive(displayName string, email string) string {
	source := strings.TrimSpace(displayName)
	if source == "" {
		source = localPart(email)
	}
	return normalize(source)
}

// localPart returns everything before the first "@" of an email address.
func localPart(email string) string {
	if at := strings.IndexByte(email, '@'); at >= 0 {
		return email[:at]
	}
	return email
}

// normalize lowercases, folds accents, and removes whitespace.
func normalize(value string) string {
	folded, _, err := transform.String(foldTransformer, value)
	if err != nil {
		// Folding is best effort. Fall back to the raw value.
		folded = value
	}

	var builder strings.Builder
	builder.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsSpace(r) {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
