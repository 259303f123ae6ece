// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"smartblog/internal/cache"
	"smartblog/internal/models"
	"smartblog/internal/slug"
	"smartblog/internal/store"
)

// CategoryHandler serves the category endpoints. Writes are admin only,
// enforced by the router; the listing is public and cached.
type CategoryHandler struct {
	categories *store.CategoryStore
	catCache   *cache.CategoryCache
}

// NewCategoryHandler creates the category endpoints. catCache may be nil.
func NewCategoryHandler(categories *store.CategoryStore, cc *cache.CategoryCache) *CategoryHandler {
	return &CategoryHandler{categories: categories, catCache: cc}
}

// List handles GET /api/categories, serving from the Valkey cache when
// warm.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.catCache != nil {
		if cached, ok := h.catCache.Get(r.Context()); ok {
			respondList(w, cached, len(cached))
			return
		}
	}

	categories, err := h.categories.List()
	if err != nil {
		respondServerError(w, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}

	if h.catCache != nil {
		h.catCache.Set(r.Context(), categories)
	}
	respondList(w, categories, len(categories))
}

type categoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Create handles POST /api/categories. The slug is derived from the
// name, never supplied by the client.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	name := ""
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	description := ""
	if req.Description != nil {
		description = *req.Description
	}

	v := &validator{}
	v.required("name", name)
	v.maxLen("name", name, 50)
	v.maxLen("description", description, 200)
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	category, err := h.categories.Create(&models.Category{
		Name:        name,
		Slug:        slug.ForCategory(name),
		Description: description,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			respondError(w, http.StatusBadRequest, "Category already exists")
			return
		}
		respondServerError(w, err)
		return
	}

	if h.catCache != nil {
		h.catCache.Invalidate(r.Context())
	}
	respondData(w, http.StatusCreated, category)
}

// Update handles PUT /api/categories/{id}. The slug is recomputed only
// when the name actually changes.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	category, err := h.categories.FindByID(id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if category == nil {
		respondNotFound(w, "Category")
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	v := &validator{}
	if req.Name != nil {
		v.required("name", *req.Name)
		v.maxLen("name", *req.Name, 50)
	}
	if req.Description != nil {
		v.maxLen("description", *req.Description, 200)
	}
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != category.Name {
			category.Name = name
			category.Slug = slug.ForCategory(name)
		}
	}
	if req.Description != nil {
		category.Description = *req.Description
	}

	if err := h.categories.Update(category); err != nil {
		if store.IsUniqueViolation(err) {
			respondError(w, http.StatusBadRequest, "Category already exists")
			return
		}
		respondServerError(w, err)
		return
	}

	if h.catCache != nil {
		h.catCache.Invalidate(r.Context())
	}
	respondData(w, http.StatusOK, category)
}

// Delete handles DELETE /api/categories/{id}. A category still referenced
// by posts cannot be removed.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	category, err := h.categories.FindByID(id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if category == nil {
		respondNotFound(w, "Category")
		return
	}

	count, err := h.categories.PostCount(id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if count > 0 {
		respondError(w, http.StatusBadRequest, "Cannot delete a category that still has posts")
		return
	}

	if err := h.categories.Delete(id); err != nil {
		respondServerError(w, err)
		return
	}

	if h.catCache != nil {
		h.catCache.Invalidate(r.Context())
	}
	respondData(w, http.StatusOK, map[string]interface{}{})
}
