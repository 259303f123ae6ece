// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups posts under a name and a derived slug. The slug is
// recomputed from the name before every save where the name changed, so
// the two are always in sync at rest.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// PostCount is computed by reverse query, not stored. The Mongoose
	// posts back-reference array this replaces was never maintained.
	PostCount int `json:"post_count"`
}

// Summary returns the restricted field subset exposed when the category
// is populated into a post response.
func (c *Category) Summary() *CategorySummary {
	return &CategorySummary{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
	}
}

// CategorySummary is the populated representation of a referenced category.
type CategorySummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
}
