package elements

import (
	"testing"

	"github.com/google/uuid"

	"cardpress/internal/apperr"
	"cardpress/internal/geometry"
	"cardpress/internal/models"
)

// TestDescribeKnownKinds verifies every registered kind has a descriptor
// with a label and a non-zero default size.
func TestDescribeKnownKinds(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			d, err := Describe(kind)
			if err != nil {
				t.Fatalf("Describe(%s): %v", kind, err)
			}
			if d.Label == "" {
				t.Error("descriptor has no label")
			}
			if d.DefaultSize.Width <= 0 || d.DefaultSize.Height <= 0 {
				t.Errorf("default size %+v not positive", d.DefaultSize)
			}
		})
	}
}

// TestDescribeUnknownKind verifies an unknown kind is a validation error.
func TestDescribeUnknownKind(t *testing.T) {
	_, err := Describe("hologram")
	if err == nil {
		t.Fatal("Describe(hologram) succeeded, want error")
	}
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("error kind = %q, want validation", apperr.KindOf(err))
	}
}

// TestNewCarriesDefaults verifies a fresh element gets the kind's default
// style and a percent position derived from the given canvas.
func TestNewCarriesDefaults(t *testing.T) {
	canvas := geometry.Size{Width: 400, Height: 250}
	el, err := New(models.KindBoundText, models.SideFront, geometry.Rect{X: 40, Y: 25}, canvas)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if el.ID == uuid.Nil {
		t.Error("element has no id")
	}
	if el.Style.BoundField != models.FieldStudentName {
		t.Errorf("default bound field = %q, want studentName", el.Style.BoundField)
	}
	if el.Position.X != 10 || el.Position.Y != 10 {
		t.Errorf("percent position = (%v,%v), want (10,10)", el.Position.X, el.Position.Y)
	}
	if el.Pixels.X != 40 || el.Pixels.Y != 25 {
		t.Errorf("pixel cache = (%v,%v), want (40,25)", el.Pixels.X, el.Pixels.Y)
	}
}

// TestValidateStyle exercises the per-kind style contracts.
func TestValidateStyle(t *testing.T) {
	tests := []struct {
		name    string
		kind    models.ElementKind
		style   models.ElementStyle
		wantErr bool
	}{
		{
			name:  "valid bound text",
			kind:  models.KindBoundText,
			style: models.ElementStyle{FontSize: 14, Align: models.AlignCenter, BoundField: models.FieldRollID},
		},
		{
			name:    "unrecognized bound field",
			kind:    models.KindBoundText,
			style:   models.ElementStyle{FontSize: 14, Align: models.AlignLeft, BoundField: "favouriteColor"},
			wantErr: true,
		},
		{
			name:    "zero font size",
			kind:    models.KindBoundText,
			style:   models.ElementStyle{Align: models.AlignLeft, BoundField: models.FieldRollID},
			wantErr: true,
		},
		{
			name:  "valid photo slot",
			kind:  models.KindPhotoSlot,
			style: models.ElementStyle{CornerRadiusPct: 25},
		},
		{
			name:    "corner radius over 50",
			kind:    models.KindPhotoSlot,
			style:   models.ElementStyle{CornerRadiusPct: 60},
			wantErr: true,
		},
		{
			name:  "valid qr payload",
			kind:  models.KindQRSlot,
			style: models.ElementStyle{PayloadTemplate: "{studentId}|{rollId}"},
		},
		{
			name:    "qr payload references unknown field",
			kind:    models.KindQRSlot,
			style:   models.ElementStyle{PayloadTemplate: "{bloodType}"},
			wantErr: true,
		},
		{
			name:    "empty barcode payload",
			kind:    models.KindBarcodeSlot,
			style:   models.ElementStyle{PayloadTemplate: "   "},
			wantErr: true,
		},
		{
			name:    "custom image without asset",
			kind:    models.KindCustomImage,
			style:   models.ElementStyle{},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStyle(tc.kind, tc.style)
			if tc.wantErr && err == nil {
				t.Error("ValidateStyle succeeded, want error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("ValidateStyle: %v", err)
			}
			if tc.wantErr && err != nil && !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("error kind = %q, want validation", apperr.KindOf(err))
			}
		})
	}
}

// TestValidateLayoutDuplicateID verifies duplicate element IDs within a
// side are rejected.
func TestValidateLayoutDuplicateID(t *testing.T) {
	id := uuid.New()
	layout := models.TemplateLayout{
		Front: models.SideLayout{
			BackgroundKey: "assets/bg.png",
			Size:          models.CanvasSize{Width: 400, Height: 250},
			Elements: []models.Element{
				{ID: id, Kind: models.KindPhotoSlot, Side: models.SideFront, Style: models.ElementStyle{CornerRadiusPct: 50}},
				{ID: id, Kind: models.KindPhotoSlot, Side: models.SideFront, Style: models.ElementStyle{CornerRadiusPct: 50}},
			},
		},
	}

	if err := ValidateLayout(&layout); err == nil {
		t.Error("ValidateLayout accepted duplicate element ids")
	}
}

// TestValidateLayoutWrongSide verifies an element filed under the wrong
// side list is rejected.
func TestValidateLayoutWrongSide(t *testing.T) {
	layout := models.TemplateLayout{
		Front: models.SideLayout{
			Elements: []models.Element{
				{ID: uuid.New(), Kind: models.KindPhotoSlot, Side: models.SideBack},
			},
		},
	}

	if err := ValidateLayout(&layout); err == nil {
		t.Error("ValidateLayout accepted element on wrong side")
	}
}

// TestPayloadPlaceholders verifies placeholder extraction order.
func TestPayloadPlaceholders(t *testing.T) {
	got := PayloadPlaceholders("{rollId}-{studentName}")
	if len(got) != 2 || got[0] != models.FieldRollID || got[1] != models.FieldStudentName {
		t.Errorf("PayloadPlaceholders = %v", got)
	}
}
