// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"database/sql"
	"net/http"

	"github.com/redis/go-redis/v9"

	"smartblog/internal/database"
)

// Health returns a readiness handler that pings PostgreSQL and Valkey.
// A nil Valkey client is reported as disabled rather than down.
func Health(db *sql.DB, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		checks := map[string]string{}

		if err := database.Ready(r.Context(), db); err != nil {
			checks["database"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "up"
		}

		if rdb == nil {
			checks["cache"] = "disabled"
		} else if err := rdb.Ping(r.Context()).Err(); err != nil {
			checks["cache"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			checks["cache"] = "up"
		}

		if status == http.StatusOK {
			respondData(w, status, checks)
			return
		}
		writeJSON(w, status, envelope{Success: false, Error: "service unavailable", Data: checks})
	}
}
