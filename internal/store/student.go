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

// studentColumns lists the student SELECT columns with the class join.
const studentColumns = `s.id, s.name, s.roll_id, s.class_id,
	COALESCE(c.name, ''), COALESCE(c.section, ''),
	s.photo_key, s.is_active, s.created_at`

// StudentStore reads student records for binding and batch rosters. The
// card engine consumes students read-only; enrollment lives elsewhere.
type StudentStore struct {
	db *sql.DB
}

// NewStudentStore creates a new StudentStore with the given database connection.
func NewStudentStore(db *sql.DB) *StudentStore {
	return &StudentStore{db: db}
}

// scanStudent scans a single joined students row.
func scanStudent(scanner interface{ Scan(...any) error }) (*models.Student, error) {
	var st models.Student
	err := scanner.Scan(
		&st.ID, &st.Name, &st.RollID, &st.ClassID,
		&st.ClassName, &st.Section,
		&st.PhotoKey, &st.IsActive, &st.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// FindByID retrieves one student with their class label resolved.
func (s *StudentStore) FindByID(id uuid.UUID) (*models.Student, error) {
	row := s.db.QueryRow(`
		SELECT `+studentColumns+`
		FROM students s
		LEFT JOIN classes c ON c.id = s.class_id
		WHERE s.id = $1
	`, id)
	st, err := scanStudent(row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "student %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return st, nil
}

// ListByClass returns all active students of a class ordered by roll id.
// Used to build the batch pipeline's roster.
func (s *StudentStore) ListByClass(classID uuid.UUID) ([]models.Student, error) {
	rows, err := s.db.Query(`
		SELECT `+studentColumns+`
		FROM students s
		LEFT JOIN classes c ON c.id = s.class_id
		WHERE s.class_id = $1 AND s.is_active = TRUE
		ORDER BY s.roll_id, s.name
	`, classID)
	if err != nil {
		return nil, fmt.Errorf("list students by class: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, *st)
	}
	return students, rows.Err()
}

// List returns all active students ordered by name.
func (s *StudentStore) List() ([]models.Student, error) {
	rows, err := s.db.Query(`
		SELECT ` + studentColumns + `
		FROM students s
		LEFT JOIN classes c ON c.id = s.class_id
		WHERE s.is_active = TRUE
		ORDER BY s.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, *st)
	}
	return students, rows.Err()
}
