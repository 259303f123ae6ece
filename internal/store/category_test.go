// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"smartblog/internal/models"
	"smartblog/internal/slug"
)

func TestCategoryCreateDerivedSlug(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	c, err := s.Create(&models.Category{
		Name: "Tech & Science 4215",
		Slug: slug.ForCategory("Tech & Science 4215"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })

	if c.Slug != "techscience4215" {
		t.Errorf("slug: got %q, want %q", c.Slug, "techscience4215")
	}

	found, err := s.FindBySlug("techscience4215")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found == nil || found.ID != c.ID {
		t.Fatal("expected category by slug")
	}
}

func TestCategoryUniqueName(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	c := newTestCategory(t, db)

	_, err := s.Create(&models.Category{Name: c.Name, Slug: c.Slug})
	if !IsUniqueViolation(err) {
		t.Errorf("duplicate name: got %v, want unique violation", err)
	}
}

func TestCategoryPostCounts(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	author := newTestUser(t, db, models.RoleUser)
	category := newTestCategory(t, db)

	newTestPost(t, db, author, category, "In category", true)
	newTestPost(t, db, author, category, "Also in category", false)

	count, err := s.PostCount(category.ID)
	if err != nil {
		t.Fatalf("PostCount: %v", err)
	}
	if count != 2 {
		t.Errorf("post count: got %d, want 2", count)
	}

	all, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, c := range all {
		if c.ID == category.ID && c.PostCount != 2 {
			t.Errorf("listed post count: got %d, want 2", c.PostCount)
		}
	}
}

func TestCategoryUpdateRecomputedSlug(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	c := newTestCategory(t, db)

	// Rename: the caller derives the new slug before saving.
	c.Name = "Renamed " + c.Name
	c.Slug = slug.ForCategory(c.Name)
	if err := s.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fresh, err := s.FindByID(c.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if fresh.Slug != slug.ForCategory(fresh.Name) {
		t.Errorf("slug out of sync with name: %q vs %q", fresh.Slug, slug.ForCategory(fresh.Name))
	}
}
