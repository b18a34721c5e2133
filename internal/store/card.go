// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"cardpress/internal/models"
)

// cardColumns lists all columns for generated_cards SELECTs.
const cardColumns = `id, student_id, template_id, template_version,
	front_key, back_key, generated_at`

// CardStore persists GeneratedCard rows. Rows are write-once: there is no
// update path, a re-generation inserts a fresh row.
type CardStore struct {
	db *sql.DB
}

// NewCardStore creates a new CardStore with the given database connection.
func NewCardStore(db *sql.DB) *CardStore {
	return &CardStore{db: db}
}

// scanCard scans a single generated_cards row.
func scanCard(scanner interface{ Scan(...any) error }) (*models.GeneratedCard, error) {
	var c models.GeneratedCard
	err := scanner.Scan(
		&c.ID, &c.StudentID, &c.TemplateID, &c.TemplateVersion,
		&c.FrontKey, &c.BackKey, &c.GeneratedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new generated card row and returns it with the
// generated id and timestamp.
func (s *CardStore) Create(card *models.GeneratedCard) (*models.GeneratedCard, error) {
	row := s.db.QueryRow(`
		INSERT INTO generated_cards (student_id, template_id, template_version, front_key, back_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+cardColumns,
		card.StudentID, card.TemplateID, card.TemplateVersion, card.FrontKey, card.BackKey,
	)
	c, err := scanCard(row)
	if err != nil {
		return nil, fmt.Errorf("create generated card: %w", err)
	}
	return c, nil
}

// List returns cards filtered by student and/or template, newest first.
// Nil filters match everything.
func (s *CardStore) List(studentID, templateID *uuid.UUID, limit int) ([]models.GeneratedCard, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT `+cardColumns+`
		FROM generated_cards
		WHERE ($1::uuid IS NULL OR student_id = $1)
		  AND ($2::uuid IS NULL OR template_id = $2)
		ORDER BY generated_at DESC
		LIMIT $3
	`, studentID, templateID, limit)
	if err != nil {
		return nil, fmt.Errorf("list generated cards: %w", err)
	}
	defer rows.Close()

	var cards []models.GeneratedCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan generated card: %w", err)
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

// CountByTemplate returns how many cards reference a template. Non-zero
// means the template may only be soft-deleted.
func (s *CardStore) CountByTemplate(templateID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM generated_cards WHERE template_id = $1
	`, templateID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count cards by template: %w", err)
	}
	return count, nil
}
