// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"cardpress/internal/apperr"
	"cardpress/internal/models"
)

// templateVersionColumns lists all columns for template_versions SELECTs.
const templateVersionColumns = `id, template_id, version, layout, saved_at`

// TemplateVersionStore reads a template's append-only version history.
// Snapshots are written only by TemplateStore.Update, inside the same
// transaction that bumps the version number.
type TemplateVersionStore struct {
	db *sql.DB
}

// NewTemplateVersionStore creates a new TemplateVersionStore backed by the given database.
func NewTemplateVersionStore(db *sql.DB) *TemplateVersionStore {
	return &TemplateVersionStore{db: db}
}

// scanTemplateVersion scans a single template_versions row.
func scanTemplateVersion(scanner interface{ Scan(...any) error }) (*models.TemplateVersion, error) {
	var (
		v      models.TemplateVersion
		layout []byte
	)
	if err := scanner.Scan(&v.ID, &v.TemplateID, &v.Version, &layout, &v.SavedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(layout, &v.Layout); err != nil {
		return nil, fmt.Errorf("decode snapshot layout: %w", err)
	}
	return &v, nil
}

// ListByTemplateID returns all snapshots for a template, newest first.
func (s *TemplateVersionStore) ListByTemplateID(templateID uuid.UUID) ([]*models.TemplateVersion, error) {
	rows, err := s.db.Query(`
		SELECT `+templateVersionColumns+`
		FROM template_versions
		WHERE template_id = $1
		ORDER BY version DESC
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list template versions: %w", err)
	}
	defer rows.Close()

	var versions []*models.TemplateVersion
	for rows.Next() {
		v, err := scanTemplateVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// FindByVersion returns one frozen snapshot.
func (s *TemplateVersionStore) FindByVersion(templateID uuid.UUID, version int) (*models.TemplateVersion, error) {
	row := s.db.QueryRow(`
		SELECT `+templateVersionColumns+`
		FROM template_versions
		WHERE template_id = $1 AND version = $2
	`, templateID, version)
	v, err := scanTemplateVersion(row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "template %s has no snapshot for version %d", templateID, version)
	}
	if err != nil {
		return nil, fmt.Errorf("find template version: %w", err)
	}
	return v, nil
}

// Count returns the number of snapshots for a template.
func (s *TemplateVersionStore) Count(templateID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM template_versions WHERE template_id = $1
	`, templateID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count template versions: %w", err)
	}
	return count, nil
}
