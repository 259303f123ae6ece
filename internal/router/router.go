// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router assembles the chi route tree and the middleware chain.
package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"smartblog/internal/auth"
	"smartblog/internal/cache"
	"smartblog/internal/handlers"
	"smartblog/internal/middleware"
	"smartblog/internal/storage"
	"smartblog/internal/store"
)

// Deps carries everything the route tree needs. Valkey and Storage may
// be nil; the dependent features degrade gracefully.
type Deps struct {
	DB      *sql.DB
	Valkey  *redis.Client
	Tokens  *auth.Tokens
	Storage *storage.Client
	Issuer  string
}

// writeLimit caps authenticated write traffic per client IP.
const (
	writeLimit  = 30
	writeWindow = time.Minute
)

// New builds the complete HTTP handler.
func New(deps Deps) http.Handler {
	users := store.NewUserStore(deps.DB)
	posts := store.NewPostStore(deps.DB)
	categories := store.NewCategoryStore(deps.DB)
	media := store.NewMediaStore(deps.DB)

	var catCache *cache.CategoryCache
	if deps.Valkey != nil {
		catCache = cache.NewCategoryCache(deps.Valkey, cache.DefaultCategoryTTL)
	}

	authH := handlers.NewAuthHandler(users, deps.Tokens, deps.Issuer)
	postH := handlers.NewPostHandler(posts, categories, media, deps.Storage, catCache)
	categoryH := handlers.NewCategoryHandler(categories, catCache)

	limiter := middleware.NewRateLimiter(deps.Valkey, writeLimit, writeWindow)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Metrics)
	r.Use(middleware.Authenticate(deps.Tokens, users))

	r.Get("/health", handlers.Health(deps.DB, deps.Valkey))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(limiter.Limit).Post("/register", authH.Register)
			r.With(limiter.Limit).Post("/login", authH.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", authH.Me)
				r.With(limiter.Limit).Put("/me", authH.UpdateMe)
				r.With(limiter.Limit).Delete("/me", authH.DeleteMe)
				r.Post("/2fa/setup", authH.TOTPSetup)
				r.Post("/2fa/verify", authH.TOTPVerify)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postH.List)
			r.Get("/search", postH.Search)
			r.Get("/{idOrSlug}/comments", postH.ListComments)
			r.Get("/{idOrSlug}", postH.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth, limiter.Limit)
				r.Post("/", postH.Create)
				r.Put("/{idOrSlug}", postH.Update)
				r.Delete("/{idOrSlug}", postH.Delete)
				r.Post("/{idOrSlug}/comments", postH.AddComment)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryH.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth, middleware.RequireAdmin, limiter.Limit)
				r.Post("/", categoryH.Create)
				r.Put("/{id}", categoryH.Update)
				r.Delete("/{id}", categoryH.Delete)
			})
		})
	})

	return r
}
