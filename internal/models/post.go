// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog entry. Comments are embedded in the post document as an
// insertion-ordered, append-only sequence; they are never independently
// addressable rows. Tags are stored as a normalized string list.
type Post struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"content"`
	Excerpt       string    `json:"excerpt,omitempty"`
	FeaturedImage *string   `json:"featured_image,omitempty"`
	AuthorID      uuid.UUID `json:"author_id"`
	CategoryID    uuid.UUID `json:"category_id"`
	Tags          []string  `json:"tags"`
	IsPublished   bool      `json:"is_published"`
	ViewCount     int       `json:"view_count"`
	Comments      []Comment `json:"comments"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Populated references (restricted field subsets). Set by the query
	// layer; nil when the post was fetched without population.
	Author   *UserSummary     `json:"author,omitempty"`
	Category *CategorySummary `json:"category,omitempty"`

	// ContentHTML carries the rendered Markdown body on detail responses.
	ContentHTML string `json:"content_html,omitempty"`

	// FeaturedImageURL is the browser-facing URL for the featured image,
	// filled in when object storage is configured.
	FeaturedImageURL string `json:"featured_image_url,omitempty"`
}

// CommentCount returns the number of embedded comments.
func (p *Post) CommentCount() int {
	return len(p.Comments)
}

// Comment lives inside its parent post and shares its lifetime.
// The observed contract never edits or deletes a comment individually.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// User is the populated comment author, same restricted subset as
	// post authors.
	User *UserSummary `json:"user,omitempty"`
}

// NewComment builds an embedded comment with a fresh identity and
// timestamp, ready to be appended to a post.
func NewComment(userID uuid.UUID, content string) Comment {
	return Comment{
		ID:        uuid.New(),
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
