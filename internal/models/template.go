// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Side identifies one face of a card.
type Side string

const (
	SideFront Side = "front"
	SideBack  Side = "back"
)

// ElementKind is the closed set of placeable element types. The editor and
// the compositor both switch exhaustively over this set; adding a kind is a
// two-sided change registered in the elements package.
type ElementKind string

const (
	KindBoundText   ElementKind = "bound-text"
	KindPhotoSlot   ElementKind = "photo-slot"
	KindQRSlot      ElementKind = "qr-slot"
	KindBarcodeSlot ElementKind = "barcode-slot"
	KindCustomImage ElementKind = "custom-image"
)

// TextAlign controls horizontal text alignment inside a bound-text box.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// BoundField is the closed vocabulary of student fields a bound-text
// element (or a code payload placeholder) may reference.
type BoundField string

const (
	FieldStudentName  BoundField = "studentName"
	FieldRollID       BoundField = "rollId"
	FieldClassSection BoundField = "classSection"
	FieldStudentID    BoundField = "studentId"
	FieldCustomText   BoundField = "customText"
)

// CanvasSize holds the pixel dimensions of a side's background image at
// upload time.
type CanvasSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PercentRect is an element's bounding box expressed as percentages of the
// side's canvas (0-100). Percent form is the resolution-independent source
// of truth for all persisted positions.
type PercentRect struct {
	X      float64 `json:"x_pct"`
	Y      float64 `json:"y_pct"`
	Width  float64 `json:"width_pct"`
	Height float64 `json:"height_pct"`
}

// PixelRect is the same box in pixels for the currently loaded canvas size.
// Always derived from the percent form; persisted only so external tooling
// can read ready-made pixel values.
type PixelRect struct {
	X      float64 `json:"x_px"`
	Y      float64 `json:"y_px"`
	Width  float64 `json:"width_px"`
	Height float64 `json:"height_px"`
}

// ElementStyle holds the kind-specific styling of an element. Fields not
// relevant to the element's kind stay zero and are omitted from JSON.
type ElementStyle struct {
	// bound-text
	FontSize   float64    `json:"font_size,omitempty"`
	FontFamily string     `json:"font_family,omitempty"`
	Color      string     `json:"color,omitempty"` // hex, e.g. "#1a1a1a"
	Align      TextAlign  `json:"align,omitempty"`
	BoundField BoundField `json:"bound_field,omitempty"`
	CustomText string     `json:"custom_text,omitempty"` // used when BoundField == customText

	// photo-slot: corner radius as a percentage of the slot's shorter
	// dimension (0 = square, 50 = circle). Percent keeps the clip shape
	// stable across canvas sizes.
	CornerRadiusPct float64 `json:"corner_radius_pct,omitempty"`

	// qr-slot / barcode-slot: payload template with {field} placeholders.
	PayloadTemplate string `json:"payload_template,omitempty"`

	// custom-image: storage key of the uploaded asset.
	AssetKey string `json:"asset_key,omitempty"`
}

// Element is one placeable visual unit on a template side.
type Element struct {
	ID       uuid.UUID    `json:"id"`
	Kind     ElementKind  `json:"kind"`
	Side     Side         `json:"side"`
	Position PercentRect  `json:"position_pct"`
	Pixels   PixelRect    `json:"position_px"`
	Style    ElementStyle `json:"style"`
}

// GridSettings controls the editor's snapping behaviour. Persisted with the
// template so a layout reopens with the grid it was authored under.
type GridSettings struct {
	Enabled         bool    `json:"enabled"`
	SizePx          float64 `json:"size_px"`
	SnapEnabled     bool    `json:"snap_enabled"`
	SnapThresholdPx float64 `json:"snap_threshold_px"`
	SnapToElements  bool    `json:"snap_to_elements"`
	SnapToEdges     bool    `json:"snap_to_edges"`
}

// DefaultGridSettings matches the editor's initial grid configuration.
func DefaultGridSettings() GridSettings {
	return GridSettings{
		Enabled:         true,
		SizePx:          10,
		SnapEnabled:     true,
		SnapThresholdPx: 6,
		SnapToElements:  true,
		SnapToEdges:     true,
	}
}

// SideLayout holds one side's background and its ordered element list.
// Element order is the z-order: later elements paint over earlier ones.
// A side with an empty BackgroundKey does not exist for rendering.
type SideLayout struct {
	BackgroundKey string     `json:"background_key,omitempty"`
	Size          CanvasSize `json:"size"`
	Elements      []Element  `json:"elements"`
}

// Defined reports whether the side has a background and participates in
// rendering.
func (s *SideLayout) Defined() bool { return s.BackgroundKey != "" }

// TemplateLayout is the JSON document persisted in the templates.layout
// column and frozen verbatim into template_versions snapshots. Its shape is
// stable across releases; external tooling reads position_pct without
// knowing the original canvas size.
type TemplateLayout struct {
	Front SideLayout   `json:"front"`
	Back  SideLayout   `json:"back"`
	Grid  GridSettings `json:"grid"`
}

// Side returns the layout for the given side, or nil for an unknown side.
func (l *TemplateLayout) Side(side Side) *SideLayout {
	switch side {
	case SideFront:
		return &l.Front
	case SideBack:
		return &l.Back
	}
	return nil
}

// Clone returns a deep copy of the layout. Element slices are copied so the
// clone shares no mutable state with the original.
func (l TemplateLayout) Clone() TemplateLayout {
	c := l
	c.Front.Elements = append([]Element(nil), l.Front.Elements...)
	c.Back.Elements = append([]Element(nil), l.Back.Elements...)
	return c
}

// Template is a reusable card layout bound to background image(s) and a set
// of positioned elements.
type Template struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Layout          TemplateLayout `json:"layout"`
	AssignedClasses []uuid.UUID    `json:"assigned_classes"`
	Locked          bool           `json:"locked"`
	Version         int            `json:"version"`
	IsActive        bool           `json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	c := t
	c.Layout = t.Layout.Clone()
	c.AssignedClasses = append([]uuid.UUID(nil), t.AssignedClasses...)
	return c
}

// TemplateVersion is one frozen snapshot in a template's append-only
// history. Never mutated once written.
type TemplateVersion struct {
	ID         uuid.UUID      `json:"id"`
	TemplateID uuid.UUID      `json:"template_id"`
	Version    int            `json:"version"`
	Layout     TemplateLayout `json:"layout"`
	SavedAt    time.Time      `json:"saved_at"`
}
