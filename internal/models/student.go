// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Class is a student cohort. Templates may be assigned to classes; the
// assignment is advisory and only used to build batch rosters.
type Class struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Section   string    `json:"section"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Label returns the display name used for the classSection bound field,
// e.g. "Grade 5 - A".
func (c *Class) Label() string {
	if c.Section == "" {
		return c.Name
	}
	return fmt.Sprintf("%s - %s", c.Name, c.Section)
}

// Student is a read-only input to the binding resolver. PhotoKey points at
// the student's photo in object storage; nil means no photo on file.
type Student struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	RollID    string    `json:"roll_id"`
	ClassID   uuid.UUID `json:"class_id"`
	ClassName string    `json:"class_name"`
	Section   string    `json:"section"`
	PhotoKey  *string   `json:"photo_key,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ClassSection returns the combined class + section label for card fields.
func (s *Student) ClassSection() string {
	if s.Section == "" {
		return s.ClassName
	}
	return fmt.Sprintf("%s - %s", s.ClassName, s.Section)
}

// HasPhoto reports whether a photo is on file for the student.
func (s *Student) HasPhoto() bool {
	return s.PhotoKey != nil && strings.TrimSpace(*s.PhotoKey) != ""
}
