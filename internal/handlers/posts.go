// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"smartblog/internal/cache"
	"smartblog/internal/markdown"
	"smartblog/internal/middleware"
	"smartblog/internal/models"
	"smartblog/internal/slug"
	"smartblog/internal/storage"
	"smartblog/internal/store"
)

// maxUploadSize caps multipart request bodies (featured images).
const maxUploadSize = 10 << 20 // 10 MiB

// PostHandler serves the post CRUD, listing, search, and comment endpoints.
type PostHandler struct {
	posts      *store.PostStore
	categories *store.CategoryStore
	media      *store.MediaStore
	storage    *storage.Client
	catCache   *cache.CategoryCache
}

// NewPostHandler creates the post endpoints. storage and catCache may be
// nil; uploads and cache invalidation are then skipped.
func NewPostHandler(posts *store.PostStore, categories *store.CategoryStore, media *store.MediaStore, st *storage.Client, cc *cache.CategoryCache) *PostHandler {
	return &PostHandler{posts: posts, categories: categories, media: media, storage: st, catCache: cc}
}

// postForm carries post input from either a JSON body or a multipart
// form. Nil pointers mean the field was absent, which matters for
// partial updates.
type postForm struct {
	Title       *string         `json:"title"`
	Content     *string         `json:"content"`
	Excerpt     *string         `json:"excerpt"`
	Category    *string         `json:"category"`
	Tags        json.RawMessage `json:"tags"`
	IsPublished *bool           `json:"is_published"`
}

// parsePostForm decodes the request into a postForm plus an optional
// uploaded featured image. Callers must close the returned file.
func parsePostForm(r *http.Request) (*postForm, multipart.File, *multipart.FileHeader, error) {
	form := &postForm{}

	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		if err := decodeJSON(r, form); err != nil {
			return nil, nil, nil, fmt.Errorf("decode post body: %w", err)
		}
		return form, nil, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, nil, nil, fmt.Errorf("parse multipart form: %w", err)
	}

	field := func(name string) *string {
		if vals, ok := r.MultipartForm.Value[name]; ok && len(vals) > 0 {
			return &vals[0]
		}
		return nil
	}

	form.Title = field("title")
	form.Content = field("content")
	form.Excerpt = field("excerpt")
	form.Category = field("category")
	if raw := field("tags"); raw != nil {
		// Form values are plain strings; wrap for the array-or-string parser.
		encoded, _ := json.Marshal(*raw)
		form.Tags = encoded
	}
	if pub := field("is_published"); pub != nil {
		parsed, err := strconv.ParseBool(*pub)
		if err == nil {
			form.IsPublished = &parsed
		}
	}

	file, header, err := r.FormFile("featuredImage")
	if err == http.ErrMissingFile {
		return form, nil, nil, nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read featured image: %w", err)
	}
	return form, file, header, nil
}

// List handles GET /api/posts with page, limit, category, and q filters.
// Drafts are hidden unless an admin passes published=false.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	opts := store.ListOptions{
		Page:          page,
		Limit:         limit,
		Query:         strings.TrimSpace(q.Get("q")),
		PublishedOnly: true,
	}

	if user := middleware.UserFromCtx(r.Context()); user != nil && user.IsAdmin() && q.Get("published") == "false" {
		opts.PublishedOnly = false
	}

	if cat := q.Get("category"); cat != "" {
		id, err := uuid.Parse(cat)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid category id")
			return
		}
		opts.CategoryID = &id
	}

	posts, total, err := h.posts.List(opts)
	if err != nil {
		respondServerError(w, err)
		return
	}
	for i := range posts {
		h.setImageURL(&posts[i])
	}

	respondPage(w, posts, len(posts), Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: store.Pages(total, limit),
	})
}

// Search handles GET /api/posts/search. The query is required; results
// are published-only and capped.
func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "Please provide a search query")
		return
	}

	posts, err := h.posts.Search(query)
	if err != nil {
		respondServerError(w, err)
		return
	}
	for i := range posts {
		h.setImageURL(&posts[i])
	}
	respondList(w, posts, len(posts))
}

// Get handles GET /api/posts/{idOrSlug}. Every successful fetch counts
// as a view; the response carries the incremented counter and the
// rendered Markdown body.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "idOrSlug")

	post, err := h.posts.FindByIDOrSlug(ref)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if post == nil {
		respondNotFound(w, "Post")
		return
	}

	views, err := h.posts.IncrementViews(post.ID)
	if err != nil {
		respondServerError(w, err)
		return
	}
	// The counter starts at 0, so a successful increment always returns
	// at least 1. Zero means the row was deleted between fetch and
	// increment; treat the post as gone.
	if views == 0 {
		respondNotFound(w, "Post")
		return
	}
	post.ViewCount = views

	if err := h.posts.ExpandCommentUsers(post); err != nil {
		respondServerError(w, err)
		return
	}

	html, err := markdown.ToHTML(post.Content)
	if err != nil {
		respondServerError(w, err)
		return
	}
	post.ContentHTML = html

	h.setImageURL(post)
	respondData(w, http.StatusOK, post)
}

// Create handles POST /api/posts. Accepts JSON or multipart with an
// optional featuredImage file.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	form, file, header, err := parsePostForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if file != nil {
		defer file.Close()
	}

	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}

	v := &validator{}
	v.required("title", str(form.Title))
	v.maxLen("title", str(form.Title), 100)
	v.required("content", str(form.Content))
	v.maxLen("excerpt", str(form.Excerpt), 200)
	v.required("category", str(form.Category))
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	categoryID, err := uuid.Parse(str(form.Category))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}
	category, err := h.categories.FindByID(categoryID)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if category == nil {
		respondNotFound(w, "Category")
		return
	}

	tags, err := normalizeTags(form.Tags)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if tags == nil {
		tags = []string{}
	}

	post := &models.Post{
		Title:       strings.TrimSpace(*form.Title),
		Slug:        slug.ForTitle(*form.Title),
		Content:     *form.Content,
		Excerpt:     str(form.Excerpt),
		AuthorID:    user.ID,
		CategoryID:  categoryID,
		Tags:        tags,
		IsPublished: form.IsPublished != nil && *form.IsPublished,
	}

	if file != nil {
		filename, err := h.uploadImage(r, file, header, user.ID)
		if err != nil {
			respondServerError(w, err)
			return
		}
		if filename != "" {
			post.FeaturedImage = &filename
		}
	}

	created, err := h.posts.Create(post)
	if store.IsUniqueViolation(err) {
		// Slug collision: retry once with a short random suffix.
		post.Slug = post.Slug + "-" + uuid.New().String()[:8]
		created, err = h.posts.Create(post)
	}
	if err != nil {
		respondServerError(w, err)
		return
	}

	if h.catCache != nil {
		h.catCache.Invalidate(r.Context())
	}

	populated, err := h.posts.FindByID(created.ID)
	if err != nil || populated == nil {
		respondData(w, http.StatusCreated, created)
		return
	}
	h.setImageURL(populated)
	respondData(w, http.StatusCreated, populated)
}

// Update handles PUT /api/posts/{id}. Absent fields keep their values;
// a title change recomputes the slug.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "idOrSlug"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	post, err := h.posts.FindByID(id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if post == nil {
		respondNotFound(w, "Post")
		return
	}
	if !user.CanModify(post) {
		respondForbidden(w, "Not authorized to update this post")
		return
	}

	form, file, header, err := parsePostForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if file != nil {
		defer file.Close()
	}

	v := &validator{}
	if form.Title != nil {
		v.required("title", *form.Title)
		v.maxLen("title", *form.Title, 100)
	}
	if form.Content != nil {
		v.required("content", *form.Content)
	}
	if form.Excerpt != nil {
		v.maxLen("excerpt", *form.Excerpt, 200)
	}
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	if form.Title != nil && strings.TrimSpace(*form.Title) != post.Title {
		post.Title = strings.TrimSpace(*form.Title)
		post.Slug = slug.ForTitle(post.Title)
	}
	if form.Content != nil {
		post.Content = *form.Content
	}
	if form.Excerpt != nil {
		post.Excerpt = *form.Excerpt
	}
	if form.IsPublished != nil {
		post.IsPublished = *form.IsPublished
	}
	if form.Category != nil {
		categoryID, err := uuid.Parse(*form.Category)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid category id")
			return
		}
		category, err := h.categories.FindByID(categoryID)
		if err != nil {
			respondServerError(w, err)
			return
		}
		if category == nil {
			respondNotFound(w, "Category")
			return
		}
		post.CategoryID = categoryID
	}
	if form.Tags != nil {
		tags, err := normalizeTags(form.Tags)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if tags == nil {
			tags = []string{}
		}
		post.Tags = tags
	}

	if file != nil {
		filename, err := h.uploadImage(r, file, header, user.ID)
		if err != nil {
			respondServerError(w, err)
			return
		}
		if filename != "" {
			h.removeImage(r, post.FeaturedImage)
			post.FeaturedImage = &filename
		}
	}

	if err := h.posts.Update(post); err != nil {
		if store.IsUniqueViolation(err) {
			post.Slug = post.Slug + "-" + uuid.New().String()[:8]
			err = h.posts.Update(post)
		}
		if err != nil {
			respondServerError(w, err)
			return
		}
	}

	updated, err := h.posts.FindByID(post.ID)
	if err != nil {
		respondServerError(w, err)
		return
	}
	h.setImageURL(updated)
	respondData(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/posts/{id}. The delete is permanent and
// takes the embedded comments and the featured image with it.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "idOrSlug"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	post, err := h.posts.FindByID(id)
	if err != nil {
		respondServerError(w, err)
		return
	}
	if post == nil {
		respondNotFound(w, "Post")
		return
	}
	if !user.CanModify(post) {
		respondForbidden(w, "Not authorized to delete this post")
		return
	}

	if err := h.posts.Delete(post.ID); err != nil {
		respondServerError(w, err)
		return
	}

	h.removeImage(r, post.FeaturedImage)
	if h.catCache != nil {
		h.catCache.Invalidate(r.Context())
	}

	respondData(w, http.StatusOK, map[string]interface{}{})
}

type commentRequest struct {
	Content string `json:"content"`
}

// AddComment handles POST /api/posts/{id}/comments and returns the
// updated post with populated comment authors.
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "idOrSlug"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid post id")
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	v := &validator{}
	v.required("content", req.Content)
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	post, err := h.posts.AppendComment(id, models.NewComment(user.ID, strings.TrimSpace(req.Content)))
	if err != nil {
		respondServerError(w, err)
		return
	}
	if post == nil {
		respondNotFound(w, "Post")
		return
	}

	if err := h.posts.ExpandCommentUsers(post); err != nil {
		respondServerError(w, err)
		return
	}
	h.setImageURL(post)
	respondData(w, http.StatusCreated, post)
}

// ListComments handles GET /api/posts/{id}/comments.
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.FindByIDOrSlug(chi.URLParam(r, "idOrSlug"))
	if err != nil {
		respondServerError(w, err)
		return
	}
	if post == nil {
		respondNotFound(w, "Post")
		return
	}

	if err := h.posts.ExpandCommentUsers(post); err != nil {
		respondServerError(w, err)
		return
	}
	respondList(w, post.Comments, len(post.Comments))
}

// uploadImage pushes a featured image to object storage and records it
// in the media table. Returns the generated filename, or "" when storage
// is not configured.
func (h *PostHandler) uploadImage(r *http.Request, file multipart.File, header *multipart.FileHeader, uploaderID uuid.UUID) (string, error) {
	if h.storage == nil {
		return "", nil
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := uuid.New().String() + ext
	key := "images/" + filename

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := h.storage.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		return "", fmt.Errorf("upload featured image: %w", err)
	}

	_, err := h.media.Create(&models.Media{
		Filename:     filename,
		OriginalName: header.Filename,
		ContentType:  contentType,
		SizeBytes:    header.Size,
		S3Key:        key,
		UploaderID:   uploaderID,
	})
	if err != nil {
		return "", fmt.Errorf("record featured image: %w", err)
	}
	return filename, nil
}

// setImageURL fills the browser-facing URL for the post's featured
// image. No-op when storage is not configured or the post has no image.
func (h *PostHandler) setImageURL(p *models.Post) {
	if h.storage == nil || p == nil || p.FeaturedImage == nil || *p.FeaturedImage == "" {
		return
	}
	p.FeaturedImageURL = h.storage.PublicURL("images/" + *p.FeaturedImage)
}

// removeImage deletes a no-longer-referenced featured image from object
// storage and drops its media record. Failures are logged, not
// surfaced; the post operation already succeeded.
func (h *PostHandler) removeImage(r *http.Request, filename *string) {
	if h.storage == nil || filename == nil || *filename == "" {
		return
	}

	m, err := h.media.FindByFilename(*filename)
	if err != nil {
		slog.Warn("look up featured image", "filename", *filename, "error", err)
		return
	}
	if m == nil {
		return
	}

	if err := h.storage.Delete(r.Context(), m.S3Key); err != nil {
		slog.Warn("delete featured image object", "key", m.S3Key, "error", err)
	}
	if err := h.media.Delete(m.Filename); err != nil {
		slog.Warn("delete media record", "filename", m.Filename, "error", err)
	}
}
