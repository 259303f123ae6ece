// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// router_test.go exercises the full HTTP surface end to end against a
// real database. Tests are skipped if PostgreSQL is not available.
package router

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"smartblog/internal/auth"
	"smartblog/internal/database"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "smartblog")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "smartblog")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

// testServer builds the full route tree over a real database, without
// Valkey or object storage. Skips if the database is unreachable.
func testServer(t *testing.T) (http.Handler, *sql.DB) {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)
	t.Cleanup(func() { db.Close() })

	handler := New(Deps{
		DB:     db,
		Tokens: auth.New("test-secret"),
		Issuer: "SmartBlog Test",
	})
	return handler, db
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (body %s)", err, rec.Body.String())
	}
	return body
}

// registerUser registers a fresh account and returns its token and id.
func registerUser(t *testing.T, h http.Handler, db *sql.DB) (token, id string) {
	t.Helper()

	suffix := uuid.NewString()[:8]
	rec := doJSON(t, h, "POST", "/api/auth/register", "", map[string]string{
		"username": "it-" + suffix,
		"email":    "it-" + suffix + "@test.local",
		"password": "secret1",
		"name":     "Integration Tester",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %s", rec.Code, rec.Body.String())
	}

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	token = data["token"].(string)
	id = data["user"].(map[string]interface{})["id"].(string)

	t.Cleanup(func() {
		db.Exec("DELETE FROM posts WHERE author_id = $1", id)
		db.Exec("DELETE FROM users WHERE id = $1", id)
	})
	return token, id
}

// makeAdmin promotes an account directly in the database. RequireAdmin
// reads the role from the users table, so the existing token keeps working.
func makeAdmin(t *testing.T, db *sql.DB, userID string) {
	t.Helper()
	if _, err := db.Exec("UPDATE users SET role = 'admin' WHERE id = $1", userID); err != nil {
		t.Fatalf("promote to admin: %v", err)
	}
}

// createCategory creates a category through the API as an admin.
func createCategory(t *testing.T, h http.Handler, db *sql.DB, adminToken string) string {
	t.Helper()

	rec := doJSON(t, h, "POST", "/api/categories", adminToken, map[string]string{
		"name": "It Cat " + uuid.NewString()[:8],
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: status %d, body %s", rec.Code, rec.Body.String())
	}

	id := decodeBody(t, rec)["data"].(map[string]interface{})["id"].(string)
	t.Cleanup(func() {
		db.Exec("DELETE FROM posts WHERE category_id = $1", id)
		db.Exec("DELETE FROM categories WHERE id = $1", id)
	})
	return id
}

func TestHealth(t *testing.T) {
	h, _ := testServer(t)

	rec := doJSON(t, h, "GET", "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status %d, body %s", rec.Code, rec.Body.String())
	}

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	if data["database"] != "up" {
		t.Errorf("database check: got %v", data["database"])
	}
	if data["cache"] != "disabled" {
		t.Errorf("cache check: got %v", data["cache"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := testServer(t)

	rec := doJSON(t, h, "GET", "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: status %d", rec.Code)
	}
}

func TestAuthFlow(t *testing.T) {
	h, db := testServer(t)

	token, _ := registerUser(t, h, db)

	// Me requires a token.
	rec := doJSON(t, h, "GET", "/api/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("me without token: status %d, want 401", rec.Code)
	}

	rec = doJSON(t, h, "GET", "/api/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status %d, body %s", rec.Code, rec.Body.String())
	}
	me := decodeBody(t, rec)["data"].(map[string]interface{})
	if me["role"] != "user" {
		t.Errorf("new accounts must get the user role, got %v", me["role"])
	}
	if _, leaked := me["password_hash"]; leaked {
		t.Error("password hash leaked in response")
	}

	// Wrong password and unknown email produce the same message.
	rec = doJSON(t, h, "POST", "/api/auth/login", "", map[string]string{
		"email": me["email"].(string), "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login: status %d, want 401", rec.Code)
	}

	rec = doJSON(t, h, "POST", "/api/auth/login", "", map[string]string{
		"email": me["email"].(string), "password": "secret1",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("login: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	h, _ := testServer(t)

	rec := doJSON(t, h, "POST", "/api/auth/register", "", map[string]string{
		"username": "", "email": "nope", "password": "123",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Error("success should be false")
	}
	if _, ok := body["errors"].([]interface{}); !ok {
		t.Errorf("expected field errors, got %v", body)
	}
}

func TestCategoryAdminGate(t *testing.T) {
	h, db := testServer(t)

	userToken, userID := registerUser(t, h, db)

	rec := doJSON(t, h, "POST", "/api/categories", userToken, map[string]string{"name": "Nope"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin create: status %d, want 403", rec.Code)
	}

	makeAdmin(t, db, userID)
	catID := createCategory(t, h, db, userToken)

	// Listing is public and includes the new category.
	rec = doJSON(t, h, "GET", "/api/categories", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list categories: status %d", rec.Code)
	}

	// Empty categories can be deleted.
	rec = doJSON(t, h, "DELETE", "/api/categories/"+catID, userToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete category: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestPostLifecycle(t *testing.T) {
	h, db := testServer(t)

	token, userID := registerUser(t, h, db)
	makeAdmin(t, db, userID)
	catID := createCategory(t, h, db, token)

	// Create.
	title := "Router Test Post " + uuid.NewString()[:8]
	rec := doJSON(t, h, "POST", "/api/posts", token, map[string]interface{}{
		"title":        title,
		"content":      "# Heading\n\nSome **markdown** body.",
		"excerpt":      "A short excerpt",
		"category":     catID,
		"tags":         []string{"integration", "router"},
		"is_published": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: status %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)["data"].(map[string]interface{})
	postID := created["id"].(string)
	slug := created["slug"].(string)
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", postID) })

	if created["author"] == nil || created["category"] == nil {
		t.Error("created post should be populated")
	}

	// Fetch by slug counts a view and renders markdown.
	rec = doJSON(t, h, "GET", "/api/posts/"+slug, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get post: status %d, body %s", rec.Code, rec.Body.String())
	}
	fetched := decodeBody(t, rec)["data"].(map[string]interface{})
	if fetched["view_count"].(float64) < 1 {
		t.Errorf("view_count: got %v, want >= 1", fetched["view_count"])
	}
	if fetched["content_html"] == nil || fetched["content_html"] == "" {
		t.Error("detail response missing content_html")
	}
	author := fetched["author"].(map[string]interface{})
	if _, leaked := author["email"]; leaked {
		t.Error("populated author must not carry email")
	}

	// Unknown references 404.
	rec = doJSON(t, h, "GET", "/api/posts/no-such-slug", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing post: status %d, want 404", rec.Code)
	}

	// Category now holds a post and refuses deletion.
	rec = doJSON(t, h, "DELETE", "/api/categories/"+catID, token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("delete referenced category: status %d, want 400", rec.Code)
	}

	// Comment.
	rec = doJSON(t, h, "POST", "/api/posts/"+postID+"/comments", token, map[string]string{
		"content": "First!",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add comment: status %d, body %s", rec.Code, rec.Body.String())
	}
	commented := decodeBody(t, rec)["data"].(map[string]interface{})
	comments := commented["comments"].([]interface{})
	if len(comments) != 1 {
		t.Fatalf("comments: got %d, want 1", len(comments))
	}
	if comments[0].(map[string]interface{})["user"] == nil {
		t.Error("comment author not populated")
	}

	// Update.
	rec = doJSON(t, h, "PUT", "/api/posts/"+postID, token, map[string]interface{}{
		"excerpt": "Updated excerpt",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update post: status %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody(t, rec)["data"].(map[string]interface{})
	if updated["excerpt"] != "Updated excerpt" {
		t.Errorf("excerpt: got %v", updated["excerpt"])
	}
	if updated["title"] != title {
		t.Errorf("partial update must not clear the title, got %v", updated["title"])
	}

	// Delete.
	rec = doJSON(t, h, "DELETE", "/api/posts/"+postID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete post: status %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, "GET", "/api/posts/"+postID, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleted post still served: status %d", rec.Code)
	}
}

func TestPostAuthorization(t *testing.T) {
	h, db := testServer(t)

	adminToken, adminID := registerUser(t, h, db)
	makeAdmin(t, db, adminID)
	catID := createCategory(t, h, db, adminToken)

	rec := doJSON(t, h, "POST", "/api/posts", adminToken, map[string]interface{}{
		"title":    "Owned Post " + uuid.NewString()[:8],
		"content":  "body",
		"category": catID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: status %d, body %s", rec.Code, rec.Body.String())
	}
	postID := decodeBody(t, rec)["data"].(map[string]interface{})["id"].(string)
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", postID) })

	// A different non-admin user cannot touch the post.
	otherToken, _ := registerUser(t, h, db)

	rec = doJSON(t, h, "PUT", "/api/posts/"+postID, otherToken, map[string]string{"title": "Hijacked"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign update: status %d, want 403", rec.Code)
	}
	rec = doJSON(t, h, "DELETE", "/api/posts/"+postID, otherToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign delete: status %d, want 403", rec.Code)
	}

	// Anonymous writes are rejected before authorization.
	rec = doJSON(t, h, "DELETE", "/api/posts/"+postID, "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous delete: status %d, want 401", rec.Code)
	}
}

func TestPostCreateUnknownCategory(t *testing.T) {
	h, db := testServer(t)

	token, userID := registerUser(t, h, db)

	rec := doJSON(t, h, "POST", "/api/posts", token, map[string]interface{}{
		"title":    "Orphan post",
		"content":  "body",
		"category": uuid.NewString(),
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown category: status %d, want 404 (body %s)", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["success"] != false {
		t.Error("success should be false")
	}

	// The rejected create must not leave a row behind.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM posts WHERE author_id = $1", userID).Scan(&count); err != nil {
		t.Fatalf("count posts: %v", err)
	}
	if count != 0 {
		t.Errorf("posts written: got %d, want 0", count)
	}
}

func TestProfileUpdateAndAccountDelete(t *testing.T) {
	h, db := testServer(t)

	token, userID := registerUser(t, h, db)

	// Over-long bio is rejected.
	rec := doJSON(t, h, "PUT", "/api/auth/me", token, map[string]string{
		"bio": strings.Repeat("b", 501),
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("long bio: status %d, want 400", rec.Code)
	}

	// Partial update keeps absent fields.
	rec = doJSON(t, h, "PUT", "/api/auth/me", token, map[string]string{
		"name": "Renamed Tester",
		"bio":  "writes tests",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile: status %d, body %s", rec.Code, rec.Body.String())
	}
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	if data["name"] != "Renamed Tester" || data["bio"] != "writes tests" {
		t.Errorf("profile not updated: %v", data)
	}
	if u, _ := data["username"].(string); u == "" {
		t.Error("username must survive a profile update")
	}

	// Account deletion removes the row; the token dies with it.
	rec = doJSON(t, h, "DELETE", "/api/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete account: status %d, body %s", rec.Code, rec.Body.String())
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE id = $1", userID).Scan(&count); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Errorf("user rows after delete: got %d, want 0", count)
	}

	rec = doJSON(t, h, "GET", "/api/auth/me", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("token for deleted account: status %d, want 401", rec.Code)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	h, _ := testServer(t)

	rec := doJSON(t, h, "GET", "/api/posts/search", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("search without q: status %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, "GET", "/api/posts/search?q=anything", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("search: status %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if _, ok := body["count"]; !ok {
		t.Error("search response missing count")
	}
	if _, present := body["pagination"]; present {
		t.Error("search responses carry no pagination metadata")
	}
}

func TestListPaginationEnvelope(t *testing.T) {
	h, _ := testServer(t)

	rec := doJSON(t, h, "GET", "/api/posts?page=1&limit=5", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	body := decodeBody(t, rec)
	pg, ok := body["pagination"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing pagination: %v", body)
	}
	if pg["page"] != float64(1) || pg["limit"] != float64(5) {
		t.Errorf("pagination window: got %v", pg)
	}
}
