// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API endpoints. Every response
// uses a uniform envelope: {"success":true,"data":...} for results,
// {"success":false,"error":...} for failures.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Pagination describes the page window of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      string      `json:"error,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// respondData writes a success envelope with a single payload.
func respondData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// respondList writes a success envelope with a count of returned items.
func respondList(w http.ResponseWriter, data interface{}, count int) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Count: &count})
}

// respondPage writes a success envelope with count and pagination metadata.
func respondPage(w http.ResponseWriter, data interface{}, count int, p Pagination) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Count: &count, Pagination: &p})
}

// respondError writes a failure envelope with a single message.
func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

// respondValidation writes a failure envelope carrying field-level errors.
func respondValidation(w http.ResponseWriter, errs []FieldError) {
	writeJSON(w, http.StatusBadRequest, envelope{Success: false, Errors: errs})
}

func respondNotFound(w http.ResponseWriter, what string) {
	respondError(w, http.StatusNotFound, what+" not found")
}

func respondForbidden(w http.ResponseWriter, msg string) {
	respondError(w, http.StatusForbidden, msg)
}

// respondServerError logs the underlying error and hides it from clients.
func respondServerError(w http.ResponseWriter, err error) {
	slog.Error("handler error", "error", err)
	respondError(w, http.StatusInternalServerError, "Server Error")
}

// decodeJSON decodes a request body into dst. Unknown fields are ignored.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}
