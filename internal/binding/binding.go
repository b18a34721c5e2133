// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package binding maps an element's declared binding to a concrete value
// for one student record: the literal string for bound-text, an encoded
// payload for qr/barcode slots, and an explicit no-image signal for a
// photo slot without a source photo.
package binding

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"cardpress/internal/apperr"
	"cardpress/internal/elements"
	"cardpress/internal/models"
)

// payloadPlaceholderRe matches {field} references in a barcode payload
// template. Expansion runs in a single pass over the template, so a field
// value that happens to contain a placeholder is emitted literally, never
// re-expanded.
var payloadPlaceholderRe = regexp.MustCompile(`\{([a-zA-Z]+)\}`)

// FieldValue resolves one bound field against a student record. customText
// reads the element's own style rather than the student.
func FieldValue(field models.BoundField, customText string, st *models.Student) (string, error) {
	switch field {
	case models.FieldStudentName:
		return st.Name, nil
	case models.FieldRollID:
		return st.RollID, nil
	case models.FieldClassSection:
		return st.ClassSection(), nil
	case models.FieldStudentID:
		return st.ID.String(), nil
	case models.FieldCustomText:
		return customText, nil
	}
	// Unreachable for templates that passed save-time validation.
	return "", apperr.New(apperr.KindValidation, "unrecognized bound field %q", field)
}

// Text resolves a bound-text element to the string the compositor draws.
func Text(el *models.Element, st *models.Student) (string, error) {
	if el.Kind != models.KindBoundText {
		return "", fmt.Errorf("element %s is %s, not bound-text", el.ID, el.Kind)
	}
	return FieldValue(el.Style.BoundField, el.Style.CustomText, st)
}

// QRPayload builds the payload a qr-slot encodes. The payload is a JSON
// object keyed by the fields the element's payload template references, so
// field values can never corrupt the payload structure regardless of what
// delimiters they contain. The object always carries the student id under
// "sid" so scanned codes resolve to a record even with a minimal template.
func QRPayload(el *models.Element, st *models.Student) (string, error) {
	if el.Kind != models.KindQRSlot {
		return "", fmt.Errorf("element %s is %s, not qr-slot", el.ID, el.Kind)
	}

	payload := map[string]string{"sid": st.ID.String()}
	for _, field := range elements.PayloadPlaceholders(el.Style.PayloadTemplate) {
		v, err := FieldValue(field, el.Style.CustomText, st)
		if err != nil {
			return "", err
		}
		payload[string(field)] = v
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode qr payload: %w", err)
	}
	return string(data), nil
}

// BarcodePayload interpolates a barcode-slot's payload template. Values
// are sanitized to the code128 ASCII subset; characters outside it are
// dropped rather than allowed to break the symbology.
func BarcodePayload(el *models.Element, st *models.Student) (string, error) {
	if el.Kind != models.KindBarcodeSlot {
		return "", fmt.Errorf("element %s is %s, not barcode-slot", el.ID, el.Kind)
	}

	var resolveErr error
	out := payloadPlaceholderRe.ReplaceAllStringFunc(el.Style.PayloadTemplate, func(m string) string {
		field := models.BoundField(m[1 : len(m)-1])
		v, err := FieldValue(field, el.Style.CustomText, st)
		if err != nil {
			resolveErr = err
			return m
		}
		return sanitizeCode128(v)
	})
	if resolveErr != nil {
		return "", resolveErr
	}

	if strings.TrimSpace(out) == "" {
		return "", apperr.New(apperr.KindValidation, "barcode payload resolved empty for element %s", el.ID)
	}
	return out, nil
}

// sanitizeCode128 keeps printable ASCII only; code128 cannot encode
// anything else.
func sanitizeCode128(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 0x20 && r <= 0x7e {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Photo resolves a photo-slot's source image. A student without a photo is
// a normal outcome, not an error: the compositor simply draws nothing and
// the editor shows a placeholder.
func Photo(st *models.Student) (key string, ok bool) {
	if !st.HasPhoto() {
		return "", false
	}
	return *st.PhotoKey, true
}
