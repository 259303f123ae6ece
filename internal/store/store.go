// Package store provides database access methods for all SmartBlog
// entities. Each store struct wraps a *sql.DB and exposes typed query
// methods. Fetches return (nil, nil) when the entity does not exist;
// errors are reserved for transport and storage failures.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (duplicate username, email, category name, or slug).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Pages computes the total page count for a result set: ceil(total/limit).
// It is independent of the page actually served.
func Pages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
