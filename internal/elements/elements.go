// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package elements catalogs the closed set of element kinds: their editor
// labels, default geometry and style, and whether they resolve against a
// student record. The registry is the join point that keeps the editor and
// the compositor from drifting apart — adding a kind means registering a
// descriptor here and a drawing routine in the compositor.
package elements

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"cardpress/internal/apperr"
	"cardpress/internal/geometry"
	"cardpress/internal/models"
)

// Descriptor declares one element kind's editor affordance and rendering
// contract.
type Descriptor struct {
	Kind            models.ElementKind `json:"kind"`
	Label           string             `json:"label"`
	DefaultSize     models.PercentRect `json:"default_size"` // width/height only
	DefaultStyle    models.ElementStyle `json:"default_style"`
	RequiresBinding bool               `json:"requires_binding"`
}

// registry is the closed, versioned kind set. Insertion order is the
// palette order shown by the editor.
var registry = []Descriptor{
	{
		Kind:        models.KindBoundText,
		Label:       "Text Field",
		DefaultSize: models.PercentRect{Width: 35, Height: 8},
		DefaultStyle: models.ElementStyle{
			FontSize:   14,
			FontFamily: "sans",
			Color:      "#1a1a1a",
			Align:      models.AlignLeft,
			BoundField: models.FieldStudentName,
		},
		RequiresBinding: true,
	},
	{
		Kind:        models.KindPhotoSlot,
		Label:       "Photo",
		DefaultSize: models.PercentRect{Width: 22, Height: 35},
		DefaultStyle: models.ElementStyle{
			CornerRadiusPct: 50, // circular by default
		},
		RequiresBinding: true,
	},
	{
		Kind:        models.KindQRSlot,
		Label:       "QR Code",
		DefaultSize: models.PercentRect{Width: 18, Height: 28},
		DefaultStyle: models.ElementStyle{
			PayloadTemplate: "{studentId}|{rollId}",
		},
		RequiresBinding: true,
	},
	{
		Kind:        models.KindBarcodeSlot,
		Label:       "Barcode",
		DefaultSize: models.PercentRect{Width: 30, Height: 10},
		DefaultStyle: models.ElementStyle{
			PayloadTemplate: "{rollId}",
		},
		RequiresBinding: true,
	},
	{
		Kind:            models.KindCustomImage,
		Label:           "Image",
		DefaultSize:     models.PercentRect{Width: 15, Height: 15},
		RequiresBinding: false,
	},
}

// Kinds returns the registered kinds in palette order.
func Kinds() []models.ElementKind {
	out := make([]models.ElementKind, len(registry))
	for i, d := range registry {
		out[i] = d.Kind
	}
	return out
}

// Describe returns the descriptor for a kind. An unknown kind is a
// contract violation, never silently ignored.
func Describe(kind models.ElementKind) (Descriptor, error) {
	for _, d := range registry {
		if d.Kind == kind {
			return d, nil
		}
	}
	return Descriptor{}, apperr.New(apperr.KindValidation, "unknown element kind %q", kind)
}

// All returns every descriptor in palette order.
func All() []Descriptor {
	return append([]Descriptor(nil), registry...)
}

// New builds a fresh element of the given kind at a pixel position on the
// given canvas, carrying the kind's default geometry and style. The caller
// routes the result through snap/clamp before committing it.
func New(kind models.ElementKind, side models.Side, atPx geometry.Rect, canvas geometry.Size) (models.Element, error) {
	desc, err := Describe(kind)
	if err != nil {
		return models.Element{}, err
	}

	size := geometry.ToPixel(models.PercentRect{Width: desc.DefaultSize.Width, Height: desc.DefaultSize.Height}, canvas)
	rect := geometry.Rect{X: atPx.X, Y: atPx.Y, Width: size.Width, Height: size.Height}

	pct := geometry.ToPercent(rect, canvas)
	return models.Element{
		ID:       uuid.New(),
		Kind:     kind,
		Side:     side,
		Position: pct,
		Pixels:   geometry.ToPixelRect(pct, canvas),
		Style:    desc.DefaultStyle,
	}, nil
}

// boundFields is the closed bound-field vocabulary.
var boundFields = map[models.BoundField]bool{
	models.FieldStudentName:  true,
	models.FieldRollID:       true,
	models.FieldClassSection: true,
	models.FieldStudentID:    true,
	models.FieldCustomText:   true,
}

// BoundFields returns the recognized bound fields.
func BoundFields() []models.BoundField {
	return []models.BoundField{
		models.FieldStudentName,
		models.FieldRollID,
		models.FieldClassSection,
		models.FieldStudentID,
		models.FieldCustomText,
	}
}

// KnownBoundField reports whether f is part of the vocabulary.
func KnownBoundField(f models.BoundField) bool {
	return boundFields[f]
}

// placeholderRe matches {field} placeholders in code payload templates.
var placeholderRe = regexp.MustCompile(`\{([a-zA-Z]+)\}`)

// ValidateStyle checks an element's style against its kind's contract.
// Called by the editor on restyle and by the template store at save time,
// so a bad bound field can never reach the batch pipeline.
func ValidateStyle(kind models.ElementKind, style models.ElementStyle) error {
	desc, err := Describe(kind)
	if err != nil {
		return err
	}

	switch desc.Kind {
	case models.KindBoundText:
		if !KnownBoundField(style.BoundField) {
			return apperr.New(apperr.KindValidation, "unrecognized bound field %q", style.BoundField)
		}
		if style.FontSize <= 0 {
			return apperr.New(apperr.KindValidation, "font size must be positive")
		}
		switch style.Align {
		case models.AlignLeft, models.AlignCenter, models.AlignRight:
		default:
			return apperr.New(apperr.KindValidation, "unrecognized text alignment %q", style.Align)
		}
	case models.KindPhotoSlot:
		if style.CornerRadiusPct < 0 || style.CornerRadiusPct > 50 {
			return apperr.New(apperr.KindValidation, "corner radius must be within 0-50%%")
		}
	case models.KindQRSlot, models.KindBarcodeSlot:
		if strings.TrimSpace(style.PayloadTemplate) == "" {
			return apperr.New(apperr.KindValidation, "%s requires a payload template", desc.Kind)
		}
		for _, m := range placeholderRe.FindAllStringSubmatch(style.PayloadTemplate, -1) {
			if f := models.BoundField(m[1]); !KnownBoundField(f) {
				return apperr.New(apperr.KindValidation, "payload template references unrecognized field %q", f)
			}
		}
	case models.KindCustomImage:
		if strings.TrimSpace(style.AssetKey) == "" {
			return apperr.New(apperr.KindValidation, "custom image requires an asset key")
		}
	}
	return nil
}

// PayloadPlaceholders extracts the bound fields referenced by a payload
// template, in order of appearance.
func PayloadPlaceholders(template string) []models.BoundField {
	var out []models.BoundField
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		out = append(out, models.BoundField(m[1]))
	}
	return out
}

// ValidateLayout walks every element of a template layout and rejects
// structural problems: unknown kinds, bad styles, elements filed under the
// wrong side, and duplicate element IDs within a side.
func ValidateLayout(layout *models.TemplateLayout) error {
	for _, side := range []models.Side{models.SideFront, models.SideBack} {
		sl := layout.Side(side)
		seen := make(map[uuid.UUID]bool, len(sl.Elements))
		for _, el := range sl.Elements {
			if el.Side != side {
				return apperr.New(apperr.KindValidation, "element %s filed under %s side but declares side %q", el.ID, side, el.Side)
			}
			if seen[el.ID] {
				return apperr.New(apperr.KindValidation, "duplicate element id %s on %s side", el.ID, side)
			}
			seen[el.ID] = true
			if err := ValidateStyle(el.Kind, el.Style); err != nil {
				return fmt.Errorf("element %s: %w", el.ID, err)
			}
		}
	}
	return nil
}
