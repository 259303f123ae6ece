// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"smartblog/internal/models"
)

// MediaStore tracks featured-image uploads. The binary lives in object
// storage; posts reference it by filename only.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore creates a new MediaStore with the given database connection.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

const mediaColumns = `id, filename, original_name, content_type, size_bytes, s3_key, uploader_id, created_at`

// Create records an uploaded file's metadata.
func (s *MediaStore) Create(m *models.Media) (*models.Media, error) {
	result := &models.Media{}
	err := s.db.QueryRow(`
		INSERT INTO media (filename, original_name, content_type, size_bytes, s3_key, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+mediaColumns,
		m.Filename, m.OriginalName, m.ContentType, m.SizeBytes, m.S3Key, m.UploaderID,
	).Scan(
		&result.ID, &result.Filename, &result.OriginalName, &result.ContentType,
		&result.SizeBytes, &result.S3Key, &result.UploaderID, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return result, nil
}

// Delete removes a media record by filename. The object itself is
// deleted from storage by the caller.
func (s *MediaStore) Delete(filename string) error {
	_, err := s.db.Exec(`DELETE FROM media WHERE filename = $1`, filename)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return nil
}

// FindByFilename retrieves media metadata by filename. Returns nil if not found.
func (s *MediaStore) FindByFilename(filename string) (*models.Media, error) {
	m := &models.Media{}
	err := s.db.QueryRow(`SELECT `+mediaColumns+` FROM media WHERE filename = $1`, filename).Scan(
		&m.ID, &m.Filename, &m.OriginalName, &m.ContentType,
		&m.SizeBytes, &m.S3Key, &m.UploaderID, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find media by filename: %w", err)
	}
	return m, nil
}
