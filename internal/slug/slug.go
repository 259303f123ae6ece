// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation for posts and
// categories. The two entity types use different derivation rules.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// nonWordRuns matches runs of characters outside [a-zA-Z0-9_].
	nonWordRuns = regexp.MustCompile(`[^\w]+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// ForTitle creates a hyphenated URL slug from a post title.
// Example: "Hello, World! 2026" → "hello-world-2026"
func ForTitle(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// ForCategory creates a compact slug from a category name by lower-casing,
// stripping non-word-character runs, and collapsing repeated hyphens.
// Example: "Tech & Science" → "techscience"
func ForCategory(s string) string {
	result := strings.ToLower(s)
	result = nonWordRuns.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return result
}
