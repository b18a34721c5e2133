// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"cardpress/internal/apperr"
	"cardpress/internal/elements"
	"cardpress/internal/models"
)

const (
	// minTemplateNameLen is the shortest accepted template name.
	minTemplateNameLen = 3

	// maxTemplateNameLen bounds template names.
	maxTemplateNameLen = 200

	// MaxCanvasPx is the maximum background dimension on the longer side.
	// Oversized backgrounds are rejected, not downscaled — downscaling
	// would invalidate previously saved pixel positions.
	MaxCanvasPx = 2000
)

// templateColumns lists all columns for templates SELECTs.
const templateColumns = `id, name, layout, assigned_classes, locked, version,
	is_active, created_at, updated_at`

// TemplateStore handles all template-related database operations.
// Uniqueness, size limits, and the version/snapshot invariant are enforced
// here, not in the editor, so every caller gets the same guarantees.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// scanTemplate scans a single templates row.
func scanTemplate(scanner interface{ Scan(...any) error }) (*models.Template, error) {
	var (
		t        models.Template
		layout   []byte
		assigned []byte
	)
	err := scanner.Scan(
		&t.ID, &t.Name, &layout, &assigned, &t.Locked, &t.Version,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(layout, &t.Layout); err != nil {
		return nil, fmt.Errorf("decode template layout: %w", err)
	}
	if err := json.Unmarshal(assigned, &t.AssignedClasses); err != nil {
		return nil, fmt.Errorf("decode assigned classes: %w", err)
	}
	return &t, nil
}

// validateName checks the template naming rules.
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < minTemplateNameLen {
		return "", apperr.New(apperr.KindValidation, "template name must be at least %d characters", minTemplateNameLen)
	}
	if utf8.RuneCountInString(name) > maxTemplateNameLen {
		return "", apperr.New(apperr.KindValidation, "template name is too long (max %d characters)", maxTemplateNameLen)
	}
	return name, nil
}

// validateLayout applies the structural rules shared by create and update:
// element shapes per the registry, and canvas size caps per defined side.
func validateLayout(layout *models.TemplateLayout) error {
	if !layout.Front.Defined() {
		return apperr.New(apperr.KindValidation, "template requires a front background image")
	}
	for _, side := range []models.Side{models.SideFront, models.SideBack} {
		sl := layout.Side(side)
		if !sl.Defined() {
			continue
		}
		if sl.Size.Width <= 0 || sl.Size.Height <= 0 {
			return apperr.New(apperr.KindValidation, "%s side has no canvas size", side)
		}
		if sl.Size.Width > MaxCanvasPx || sl.Size.Height > MaxCanvasPx {
			return apperr.New(apperr.KindResourceTooLarge, "%s background exceeds %dpx on the longer side", side, MaxCanvasPx)
		}
	}
	return elements.ValidateLayout(layout)
}

// nameInUse reports whether an active template already uses the name,
// case-insensitively, excluding the given id (uuid.Nil for create).
func (s *TemplateStore) nameInUse(name string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM templates
			WHERE LOWER(name) = LOWER($1) AND is_active = TRUE AND id <> $2
		)
	`, name, exclude).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check template name: %w", err)
	}
	return exists, nil
}

// Create validates and inserts a new template at version 1.
func (s *TemplateStore) Create(name string, layout models.TemplateLayout, assigned []uuid.UUID) (*models.Template, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if err := validateLayout(&layout); err != nil {
		return nil, err
	}
	inUse, err := s.nameInUse(name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, apperr.New(apperr.KindValidation, "template name %q is already in use", name)
	}

	layoutJSON, err := json.Marshal(layout)
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	if assigned == nil {
		assigned = []uuid.UUID{}
	}
	assignedJSON, err := json.Marshal(assigned)
	if err != nil {
		return nil, fmt.Errorf("encode assigned classes: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO templates (name, layout, assigned_classes, version)
		VALUES ($1, $2, $3, 1)
		RETURNING `+templateColumns,
		name, layoutJSON, assignedJSON,
	)
	t, err := scanTemplate(row)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return t, nil
}

// List returns all active templates ordered by name.
func (s *TemplateStore) List() ([]models.Template, error) {
	rows, err := s.db.Query(`
		SELECT ` + templateColumns + `
		FROM templates
		WHERE is_active = TRUE
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// FindByID retrieves an active template by its UUID. Soft-deleted
// templates are invisible here, same as in List; their layout history
// stays reachable through TemplateVersionStore.
func (s *TemplateStore) FindByID(id uuid.UUID) (*models.Template, error) {
	row := s.db.QueryRow(`
		SELECT `+templateColumns+`
		FROM templates WHERE id = $1 AND is_active = TRUE
	`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "template %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return t, nil
}

// Update saves a template. t.Version must carry the version the caller
// loaded; a mismatch means someone saved in between and yields a
// concurrent-modification error so the editor can reload.
//
// On a structural (layout) change the prior layout is appended to
// template_versions and the version incremented — both inside one
// transaction, so a reader can never observe a new version number with a
// missing snapshot. Saving an unchanged layout updates only name and
// class assignment and does not bump the version.
func (s *TemplateStore) Update(t *models.Template) (*models.Template, error) {
	name, err := validateName(t.Name)
	if err != nil {
		return nil, err
	}
	if err := validateLayout(&t.Layout); err != nil {
		return nil, err
	}
	inUse, err := s.nameInUse(name, t.ID)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, apperr.New(apperr.KindValidation, "template name %q is already in use", name)
	}

	newLayout, err := json.Marshal(t.Layout)
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	if t.AssignedClasses == nil {
		t.AssignedClasses = []uuid.UUID{}
	}
	assignedJSON, err := json.Marshal(t.AssignedClasses)
	if err != nil {
		return nil, fmt.Errorf("encode assigned classes: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		curLayout  []byte
		curVersion int
		locked     bool
	)
	err = tx.QueryRow(`
		SELECT layout, version, locked FROM templates
		WHERE id = $1 AND is_active = TRUE
		FOR UPDATE
	`, t.ID).Scan(&curLayout, &curVersion, &locked)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "template %s not found", t.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("load template for update: %w", err)
	}

	if curVersion != t.Version {
		return nil, apperr.New(apperr.KindConcurrentModification,
			"template %s is at version %d, editor loaded %d", t.ID, curVersion, t.Version)
	}
	if locked {
		return nil, apperr.New(apperr.KindConcurrentModification, "template %s is locked", t.ID)
	}

	structural, err := layoutChanged(curLayout, newLayout)
	if err != nil {
		return nil, err
	}

	if structural {
		// Freeze the prior state before applying the patch. The history
		// is append-only: snapshots are never rewritten.
		_, err = tx.Exec(`
			INSERT INTO template_versions (template_id, version, layout)
			VALUES ($1, $2, $3)
		`, t.ID, curVersion, curLayout)
		if err != nil {
			return nil, fmt.Errorf("snapshot template version: %w", err)
		}
		_, err = tx.Exec(`
			UPDATE templates SET
				name = $1, layout = $2, assigned_classes = $3,
				version = version + 1, updated_at = NOW()
			WHERE id = $4
		`, name, newLayout, assignedJSON, t.ID)
	} else {
		_, err = tx.Exec(`
			UPDATE templates SET
				name = $1, assigned_classes = $2, updated_at = NOW()
			WHERE id = $3
		`, name, assignedJSON, t.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit template update: %w", err)
	}
	return s.FindByID(t.ID)
}

// layoutChanged compares two layout documents structurally, ignoring JSON
// key-order noise from the database's jsonb normalization.
func layoutChanged(a, b []byte) (bool, error) {
	var la, lb models.TemplateLayout
	if err := json.Unmarshal(a, &la); err != nil {
		return false, fmt.Errorf("decode stored layout: %w", err)
	}
	if err := json.Unmarshal(b, &lb); err != nil {
		return false, fmt.Errorf("decode new layout: %w", err)
	}
	na, err := json.Marshal(la)
	if err != nil {
		return false, err
	}
	nb, err := json.Marshal(lb)
	if err != nil {
		return false, err
	}
	return !bytes.Equal(na, nb), nil
}

// Delete removes a template. While GeneratedCard rows reference it the
// template is only soft-deleted, so historical cards stay explicable; with
// no references it is removed outright and its name is freed either way.
func (s *TemplateStore) Delete(id uuid.UUID) error {
	var referenced bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM generated_cards WHERE template_id = $1)
	`, id).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("check template references: %w", err)
	}

	if referenced {
		result, err := s.db.Exec(`
			UPDATE templates SET is_active = FALSE, updated_at = NOW() WHERE id = $1
		`, id)
		if err != nil {
			return fmt.Errorf("soft-delete template: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return apperr.New(apperr.KindNotFound, "template %s not found", id)
		}
		return nil
	}

	result, err := s.db.Exec(`DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperr.New(apperr.KindNotFound, "template %s not found", id)
	}
	return nil
}

// SetLocked toggles the editing lock.
func (s *TemplateStore) SetLocked(id uuid.UUID, locked bool) error {
	result, err := s.db.Exec(`
		UPDATE templates SET locked = $1, updated_at = NOW()
		WHERE id = $2 AND is_active = TRUE
	`, locked, id)
	if err != nil {
		return fmt.Errorf("set template lock: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperr.New(apperr.KindNotFound, "template %s not found", id)
	}
	return nil
}

// Count returns the number of active templates.
func (s *TemplateStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM templates WHERE is_active = TRUE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return count, nil
}
