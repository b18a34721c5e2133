// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// GeneratedCard records one rendered card for one student. Rows are
// immutable once written: re-generating creates a new row rather than
// overwriting, so every historical card stays traceable to the exact
// template version that produced it.
type GeneratedCard struct {
	ID              uuid.UUID `json:"id"`
	StudentID       uuid.UUID `json:"student_id"`
	TemplateID      uuid.UUID `json:"template_id"`
	TemplateVersion int       `json:"template_version"`
	FrontKey        string    `json:"front_key"`
	BackKey         *string   `json:"back_key,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// HasBack reports whether a back-side raster was produced.
func (c *GeneratedCard) HasBack() bool {
	return c.BackKey != nil && *c.BackKey != ""
}
