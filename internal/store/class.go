// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"cardpress/internal/apperr"
	"cardpress/internal/models"
)

// ClassStore reads class records for roster resolution and template
// assignment.
type ClassStore struct {
	db *sql.DB
}

// NewClassStore creates a new ClassStore with the given database connection.
func NewClassStore(db *sql.DB) *ClassStore {
	return &ClassStore{db: db}
}

// List returns all active classes ordered by name and section.
func (s *ClassStore) List() ([]models.Class, error) {
	rows, err := s.db.Query(`
		SELECT id, name, section, is_active, created_at
		FROM classes
		WHERE is_active = TRUE
		ORDER BY name, section
	`)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	defer rows.Close()

	var classes []models.Class
	for rows.Next() {
		var c models.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.Section, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan class: %w", err)
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// FindByID retrieves a class by its UUID.
func (s *ClassStore) FindByID(id uuid.UUID) (*models.Class, error) {
	var c models.Class
	err := s.db.QueryRow(`
		SELECT id, name, section, is_active, created_at
		FROM classes WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Section, &c.IsActive, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "class %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find class by id: %w", err)
	}
	return &c, nil
}
