// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// validator accumulates field errors while checking request input.
type validator struct {
	errs []FieldError
}

func (v *validator) add(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

func (v *validator) ok() bool { return len(v.errs) == 0 }

// required checks that a trimmed value is non-empty.
func (v *validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "Please provide "+indefinite(field))
	}
}

// maxLen checks an upper bound on string length in runes.
func (v *validator) maxLen(field, value string, limit int) {
	if len([]rune(value)) > limit {
		v.add(field, fmt.Sprintf("%s cannot be more than %d characters", capitalize(field), limit))
	}
}

// minLen checks a lower bound on string length in runes.
func (v *validator) minLen(field, value string, limit int) {
	if len([]rune(value)) < limit {
		v.add(field, fmt.Sprintf("%s must be at least %d characters", capitalize(field), limit))
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// email checks basic address shape. The database enforces uniqueness.
func (v *validator) email(field, value string) {
	if !emailPattern.MatchString(value) {
		v.add(field, "Please provide a valid email")
	}
}

func indefinite(field string) string {
	switch field[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + field
	}
	return "a " + field
}

// normalizeTags accepts either a JSON array of strings or a single
// comma-separated string and returns trimmed, deduplicated tags. The
// first occurrence of a duplicate wins, preserving input order.
func normalizeTags(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		var joined string
		if err := json.Unmarshal(raw, &joined); err != nil {
			return nil, fmt.Errorf("tags must be an array or a comma separated string")
		}
		items = strings.Split(joined, ",")
	}

	seen := make(map[string]bool, len(items))
	tags := make([]string, 0, len(items))
	for _, item := range items {
		tag := strings.TrimSpace(item)
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		tags = append(tags, tag)
	}
	return tags, nil
}
