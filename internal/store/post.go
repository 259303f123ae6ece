// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// post.go implements the post entity store and the query engine: filtered,
// paginated, sorted listings, capped search, reference population, the
// atomic view counter, and the embedded comment sequence.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"smartblog/internal/models"
)

// PostStore handles all post-related database operations. Comments live
// inside the post row as a JSONB array and are only touched through
// atomic whole-document operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// SearchLimit caps unpaginated search results.
const SearchLimit = 20

const postColumns = `p.id, p.title, p.slug, p.content, p.excerpt, p.featured_image,
       p.author_id, p.category_id, p.tags, p.is_published, p.view_count, p.comments,
       p.created_at, p.updated_at`

// joinedColumns extends postColumns with the populated author and
// category summaries. Only the allow-listed fields are selected; email
// and password hash never leave the users table on this path.
const joinedColumns = postColumns + `,
       u.id, u.username, u.name, u.avatar,
       c.id, c.name, c.slug, c.description`

const joinedFrom = ` FROM posts p
	JOIN users u ON u.id = p.author_id
	JOIN categories c ON c.id = p.category_id`

// textMatchClause is the case-insensitive substring disjunction applied
// when a free-text query is present. The same argument feeds all four
// branches.
const textMatchClause = `(p.title ILIKE $%d OR p.content ILIKE $%d OR p.excerpt ILIKE $%d
	OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(p.tags) tag WHERE tag ILIKE $%d))`

// scanJoinedPost scans a row of joinedColumns into a populated Post.
func scanJoinedPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	author := &models.UserSummary{}
	category := &models.CategorySummary{}
	var tagsRaw, commentsRaw []byte

	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.FeaturedImage,
		&p.AuthorID, &p.CategoryID, &tagsRaw, &p.IsPublished, &p.ViewCount, &commentsRaw,
		&p.CreatedAt, &p.UpdatedAt,
		&author.ID, &author.Username, &author.Name, &author.Avatar,
		&category.ID, &category.Name, &category.Slug, &category.Description,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tagsRaw, &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal(commentsRaw, &p.Comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}

	p.Author = author
	p.Category = category
	return p, nil
}

// ListOptions control the post listing query.
type ListOptions struct {
	Page          int        // 1-based; values < 1 are coerced to 1
	Limit         int        // page size; values < 1 fall back to 10
	CategoryID    *uuid.UUID // optional category filter
	Query         string     // optional free-text query
	PublishedOnly bool       // false only for privileged callers
}

// buildFilter assembles the WHERE clause and arguments for the options.
func (o *ListOptions) buildFilter() (string, []any) {
	where := ""
	and := func(clause string) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}

	var args []any
	if o.PublishedOnly {
		and("p.is_published = TRUE")
	}
	if o.CategoryID != nil {
		args = append(args, *o.CategoryID)
		and(fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if o.Query != "" {
		args = append(args, "%"+o.Query+"%")
		n := len(args)
		and(fmt.Sprintf(textMatchClause, n, n, n, n))
	}
	return where, args
}

// List returns a page of posts matching the options, newest first, along
// with the total match count. Pages beyond the range yield an empty slice,
// not an error.
func (s *PostStore) List(opts ListOptions) ([]models.Post, int, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 10
	}

	where, args := opts.buildFilter()

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)
	query := `SELECT ` + joinedColumns + joinedFrom + where +
		fmt.Sprintf(` ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanJoinedPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, total, rows.Err()
}

// Search returns published posts matching the free-text query, newest
// first, capped at SearchLimit. No pagination metadata is produced.
func (s *PostStore) Search(query string) ([]models.Post, error) {
	opts := ListOptions{Query: query, PublishedOnly: true}
	where, args := opts.buildFilter()

	args = append(args, SearchLimit)
	rows, err := s.db.Query(
		`SELECT `+joinedColumns+joinedFrom+where+
			fmt.Sprintf(` ORDER BY p.created_at DESC LIMIT $%d`, len(args)),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		p, err := scanJoinedPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// FindByID retrieves a populated post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+joinedColumns+joinedFrom+` WHERE p.id = $1`, id)
	p, err := scanJoinedPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindByIDOrSlug resolves a post by UUID or slug; either satisfies.
// Returns nil if not found.
func (s *PostStore) FindByIDOrSlug(ref string) (*models.Post, error) {
	var row *sql.Row
	if id, err := uuid.Parse(ref); err == nil {
		row = s.db.QueryRow(`SELECT `+joinedColumns+joinedFrom+` WHERE p.id = $1 OR p.slug = $2`, id, ref)
	} else {
		row = s.db.QueryRow(`SELECT `+joinedColumns+joinedFrom+` WHERE p.slug = $1`, ref)
	}

	p, err := scanJoinedPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id or slug: %w", err)
	}
	return p, nil
}

// Create inserts a new post and returns its generated identity. The
// returned post is unpopulated; callers refetch via FindByID for the
// populated response.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	result := &models.Post{Tags: p.Tags, Comments: []models.Comment{}}
	err = s.db.QueryRow(`
		INSERT INTO posts (title, slug, content, excerpt, featured_image,
		                   author_id, category_id, tags, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, title, slug, content, excerpt, featured_image,
		          author_id, category_id, is_published, view_count,
		          created_at, updated_at
	`, p.Title, p.Slug, p.Content, p.Excerpt, p.FeaturedImage,
		p.AuthorID, p.CategoryID, tags, p.IsPublished,
	).Scan(
		&result.ID, &result.Title, &result.Slug, &result.Content, &result.Excerpt,
		&result.FeaturedImage, &result.AuthorID, &result.CategoryID,
		&result.IsPublished, &result.ViewCount, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update modifies the mutable fields of an existing post. The author is
// immutable; the view counter and comment sequence change only through
// their atomic operations.
func (s *PostStore) Update(p *models.Post) error {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, content = $3, excerpt = $4,
			featured_image = $5, category_id = $6, tags = $7,
			is_published = $8, updated_at = NOW()
		WHERE id = $9
	`, p.Title, p.Slug, p.Content, p.Excerpt,
		p.FeaturedImage, p.CategoryID, tags, p.IsPublished, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID. Embedded comments share the row's lifetime.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// IncrementViews bumps the view counter by exactly 1 and returns the new
// value. The increment happens in the database, so concurrent detail
// fetches never lose an update.
func (s *PostStore) IncrementViews(id uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		UPDATE posts SET view_count = view_count + 1 WHERE id = $1
		RETURNING view_count
	`, id).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("increment views: %w", err)
	}
	return count, nil
}

// AppendComment atomically appends a comment to the post's embedded
// sequence and returns the updated, populated post. Returns nil if the
// post does not exist. The JSONB concatenation keeps concurrent appends
// from losing each other.
func (s *PostStore) AppendComment(postID uuid.UUID, c models.Comment) (*models.Post, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode comment: %w", err)
	}

	res, err := s.db.Exec(`
		UPDATE posts
		SET comments = comments || jsonb_build_array($2::jsonb), updated_at = NOW()
		WHERE id = $1
	`, postID, payload)
	if err != nil {
		return nil, fmt.Errorf("append comment: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("append comment result: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return s.FindByID(postID)
}

// ExpandCommentUsers populates the restricted user summary for every
// embedded comment on the post. Comments by since-deleted users keep a
// nil User.
func (s *PostStore) ExpandCommentUsers(p *models.Post) error {
	if p == nil || len(p.Comments) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, c := range p.Comments {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			ids = append(ids, c.UserID)
		}
	}

	summaries, err := NewUserStore(s.db).Summaries(ids)
	if err != nil {
		return fmt.Errorf("expand comment users: %w", err)
	}

	for i := range p.Comments {
		p.Comments[i].User = summaries[p.Comments[i].UserID]
	}
	return nil
}
