package binding

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"cardpress/internal/models"
)

func sampleStudent() *models.Student {
	photo := "assets/photos/asha.jpg"
	return &models.Student{
		ID:        uuid.MustParse("7d6f2f64-5e3a-4f7e-9d8c-2b1a0c9e8f7a"),
		Name:      "Asha Rao",
		RollID:    "R-1042",
		ClassName: "Grade 5",
		Section:   "A",
		PhotoKey:  &photo,
	}
}

func textElement(field models.BoundField, custom string) *models.Element {
	return &models.Element{
		ID:   uuid.New(),
		Kind: models.KindBoundText,
		Style: models.ElementStyle{
			FontSize:   14,
			Align:      models.AlignLeft,
			BoundField: field,
			CustomText: custom,
		},
	}
}

// TestTextResolution verifies each vocabulary field resolves to the
// expected student value.
func TestTextResolution(t *testing.T) {
	st := sampleStudent()

	tests := []struct {
		name  string
		field models.BoundField
		want  string
	}{
		{name: "student name", field: models.FieldStudentName, want: "Asha Rao"},
		{name: "roll id", field: models.FieldRollID, want: "R-1042"},
		{name: "class section", field: models.FieldClassSection, want: "Grade 5 - A"},
		{name: "student id", field: models.FieldStudentID, want: st.ID.String()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Text(textElement(tc.field, ""), st)
			if err != nil {
				t.Fatalf("Text: %v", err)
			}
			if got != tc.want {
				t.Errorf("Text = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestTextCustom verifies customText reads the element, not the student.
func TestTextCustom(t *testing.T) {
	got, err := Text(textElement(models.FieldCustomText, "Springfield Public School"), sampleStudent())
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "Springfield Public School" {
		t.Errorf("Text = %q", got)
	}
}

// TestQRPayloadRoundTrips verifies the QR payload is a JSON object that
// decodes back to the interpolated fields, even when a value contains the
// delimiters the template uses.
func TestQRPayloadRoundTrips(t *testing.T) {
	st := sampleStudent()
	st.Name = `Asha "AJ" Rao | Grade 5` // hostile delimiters

	el := &models.Element{
		ID:   uuid.New(),
		Kind: models.KindQRSlot,
		Style: models.ElementStyle{
			PayloadTemplate: "{studentName}|{rollId}",
		},
	}

	payload, err := QRPayload(el, st)
	if err != nil {
		t.Fatalf("QRPayload: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded["studentName"] != st.Name {
		t.Errorf("studentName = %q, want %q", decoded["studentName"], st.Name)
	}
	if decoded["rollId"] != "R-1042" {
		t.Errorf("rollId = %q", decoded["rollId"])
	}
	if decoded["sid"] != st.ID.String() {
		t.Errorf("sid = %q, want the student id", decoded["sid"])
	}
}

// TestBarcodePayload verifies interpolation and code128 sanitization.
func TestBarcodePayload(t *testing.T) {
	st := sampleStudent()
	st.RollID = "R–1042" // en dash, not encodable in code128

	el := &models.Element{
		ID:   uuid.New(),
		Kind: models.KindBarcodeSlot,
		Style: models.ElementStyle{
			PayloadTemplate: "ID:{rollId}",
		},
	}

	got, err := BarcodePayload(el, st)
	if err != nil {
		t.Fatalf("BarcodePayload: %v", err)
	}
	if got != "ID:R1042" {
		t.Errorf("BarcodePayload = %q, want non-ASCII stripped %q", got, "ID:R1042")
	}
	if strings.ContainsFunc(got, func(r rune) bool { return r < 0x20 || r > 0x7e }) {
		t.Errorf("payload %q contains non-code128 characters", got)
	}
}

// TestBarcodePayloadValueIsNotReExpanded verifies a field value that
// happens to contain placeholder syntax comes out literally: expansion is
// one pass over the template, never over substituted output.
func TestBarcodePayloadValueIsNotReExpanded(t *testing.T) {
	st := sampleStudent()
	st.Name = "{rollId}"

	el := &models.Element{
		ID:   uuid.New(),
		Kind: models.KindBarcodeSlot,
		Style: models.ElementStyle{
			PayloadTemplate: "{studentName}:{rollId}",
		},
	}

	got, err := BarcodePayload(el, st)
	if err != nil {
		t.Fatalf("BarcodePayload: %v", err)
	}
	if got != "{rollId}:R-1042" {
		t.Errorf("BarcodePayload = %q, want %q", got, "{rollId}:R-1042")
	}
}

// TestPhotoResolution verifies the explicit no-image signal.
func TestPhotoResolution(t *testing.T) {
	st := sampleStudent()
	key, ok := Photo(st)
	if !ok || key != *st.PhotoKey {
		t.Errorf("Photo = (%q,%v), want (%q,true)", key, ok, *st.PhotoKey)
	}

	st.PhotoKey = nil
	if _, ok := Photo(st); ok {
		t.Error("Photo reported ok for a student without a photo")
	}

	empty := "  "
	st.PhotoKey = &empty
	if _, ok := Photo(st); ok {
		t.Error("Photo reported ok for a blank photo key")
	}
}
