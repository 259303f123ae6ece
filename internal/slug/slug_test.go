// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import "testing"

func TestForTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World! 2026", "hello-world-2026"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Multiple   spaces", "multiple-spaces"},
		{"already-hyphenated-slug", "already-hyphenated-slug"},
		{"Ünïcödé stripped", "ncd-stripped"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := ForTitle(tt.in); got != tt.want {
			t.Errorf("ForTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestForCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tech & Science", "techscience"},
		{"Programming", "programming"},
		{"Web Development", "webdevelopment"},
		{"C++", "c"},
		{"under_score", "under_score"},
	}

	for _, tt := range tests {
		if got := ForCategory(tt.in); got != tt.want {
			t.Errorf("ForCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestForCategoryStableForSameName(t *testing.T) {
	a := ForCategory("Tech & Science")
	b := ForCategory("Tech & Science")
	if a != b {
		t.Errorf("slug derivation not deterministic: %q vs %q", a, b)
	}
}
