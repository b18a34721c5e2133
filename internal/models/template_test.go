package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// TestElementKindConstants verifies the element kind string values. These
// are persisted in template JSON and must never change.
func TestElementKindConstants(t *testing.T) {
	tests := []struct {
		name     string
		kind     ElementKind
		expected string
	}{
		{name: "bound text", kind: KindBoundText, expected: "bound-text"},
		{name: "photo slot", kind: KindPhotoSlot, expected: "photo-slot"},
		{name: "qr slot", kind: KindQRSlot, expected: "qr-slot"},
		{name: "barcode slot", kind: KindBarcodeSlot, expected: "barcode-slot"},
		{name: "custom image", kind: KindCustomImage, expected: "custom-image"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.kind) != tc.expected {
				t.Errorf("ElementKind = %q, want %q", string(tc.kind), tc.expected)
			}
		})
	}
}

// TestLayoutJSONShape verifies the persisted layout JSON keeps the stable
// field names external tooling depends on: percent positions must be
// readable without knowing the canvas size.
func TestLayoutJSONShape(t *testing.T) {
	layout := TemplateLayout{
		Front: SideLayout{
			BackgroundKey: "assets/bg-front.png",
			Size:          CanvasSize{Width: 400, Height: 250},
			Elements: []Element{{
				ID:       uuid.New(),
				Kind:     KindBoundText,
				Side:     SideFront,
				Position: PercentRect{X: 10, Y: 10, Width: 40, Height: 8},
				Pixels:   PixelRect{X: 40, Y: 25, Width: 160, Height: 20},
				Style:    ElementStyle{FontSize: 14, Align: AlignLeft, BoundField: FieldStudentName},
			}},
		},
		Grid: DefaultGridSettings(),
	}

	data, err := json.Marshal(layout)
	if err != nil {
		t.Fatalf("marshal layout: %v", err)
	}

	for _, key := range []string{
		`"position_pct"`, `"position_px"`, `"x_pct"`, `"y_pct"`,
		`"width_pct"`, `"height_pct"`, `"x_px"`, `"background_key"`,
		`"bound_field"`, `"grid"`, `"snap_threshold_px"`,
	} {
		if !strings.Contains(string(data), key) {
			t.Errorf("layout JSON missing stable key %s", key)
		}
	}

	var back TemplateLayout
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal layout: %v", err)
	}
	if back.Front.Elements[0].Position != layout.Front.Elements[0].Position {
		t.Errorf("percent position changed across round-trip: %+v", back.Front.Elements[0].Position)
	}
}

// TestLayoutCloneIsDeep verifies mutating a clone leaves the original intact.
func TestLayoutCloneIsDeep(t *testing.T) {
	orig := TemplateLayout{
		Front: SideLayout{
			Size:     CanvasSize{Width: 400, Height: 250},
			Elements: []Element{{ID: uuid.New(), Kind: KindPhotoSlot, Side: SideFront}},
		},
	}

	clone := orig.Clone()
	clone.Front.Elements[0].Kind = KindQRSlot
	clone.Front.Elements = append(clone.Front.Elements, Element{ID: uuid.New()})

	if orig.Front.Elements[0].Kind != KindPhotoSlot {
		t.Error("mutating clone changed the original element")
	}
	if len(orig.Front.Elements) != 1 {
		t.Errorf("original element count = %d, want 1", len(orig.Front.Elements))
	}
}

// TestSideLayoutDefined verifies a side without a background is absent.
func TestSideLayoutDefined(t *testing.T) {
	var s SideLayout
	if s.Defined() {
		t.Error("empty side should not be defined")
	}
	s.BackgroundKey = "assets/bg.png"
	if !s.Defined() {
		t.Error("side with background should be defined")
	}
}
