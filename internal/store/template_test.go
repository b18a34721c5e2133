// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"

	"cardpress/internal/apperr"
	"cardpress/internal/models"
)

func TestTemplateStore_Create(t *testing.T) {
	db := testDB(t)
	cleanTemplates(t, db, "Create Test Card")
	t.Cleanup(func() { cleanTemplates(t, db, "Create Test Card") })

	ts := NewTemplateStore(db)

	tpl, err := ts.Create("Create Test Card", testLayout(), nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if tpl.Version != 1 {
		t.Errorf("new template Version = %d, want 1", tpl.Version)
	}
	if !tpl.IsActive {
		t.Error("new template should be active")
	}
	if tpl.Locked {
		t.Error("new template should not be locked")
	}
	if len(tpl.Layout.Front.Elements) != 1 {
		t.Errorf("layout round-trip lost elements: got %d, want 1", len(tpl.Layout.Front.Elements))
	}
}

func TestTemplateStore_Create_RejectsBadInput(t *testing.T) {
	db := testDB(t)
	ts := NewTemplateStore(db)

	t.Run("short name", func(t *testing.T) {
		if _, err := ts.Create("ab", testLayout(), nil); !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("Create with 2-char name: err = %v, want KindValidation", err)
		}
	})

	t.Run("missing front side", func(t *testing.T) {
		layout := models.TemplateLayout{Grid: models.DefaultGridSettings()}
		if _, err := ts.Create("No Front Side", layout, nil); !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("Create without front: err = %v, want KindValidation", err)
		}
	})

	t.Run("oversized canvas", func(t *testing.T) {
		layout := testLayout()
		layout.Front.Size = models.CanvasSize{Width: 4200, Height: 640}
		if _, err := ts.Create("Huge Canvas", layout, nil); !apperr.IsKind(err, apperr.KindResourceTooLarge) {
			t.Errorf("Create with 4200px canvas: err = %v, want KindResourceTooLarge", err)
		}
	})
}

func TestTemplateStore_Create_NameUniqueness(t *testing.T) {
	db := testDB(t)
	cleanTemplates(t, db, "Unique Name Card")
	t.Cleanup(func() { cleanTemplates(t, db, "Unique Name Card") })

	ts := NewTemplateStore(db)

	if _, err := ts.Create("Unique Name Card", testLayout(), nil); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same name, different case — still a conflict.
	_, err := ts.Create("UNIQUE NAME card", testLayout(), nil)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("duplicate name Create: err = %v, want KindValidation", err)
	}
}

// TestTemplateStore_Versioning covers the append-only history contract:
// two structural saves take the template from version 1 to version 3 and
// leave exactly two snapshots, one per superseded version.
func TestTemplateStore_Versioning(t *testing.T) {
	db := testDB(t)
	cleanTemplates(t, db, "Versioned Card")
	t.Cleanup(func() { cleanTemplates(t, db, "Versioned Card") })

	ts := NewTemplateStore(db)
	vs := NewTemplateVersionStore(db)

	tpl, err := ts.Create("Versioned Card", testLayout(), nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// First structural edit: move the text element.
	tpl.Layout.Front.Elements[0].Position.X = 20
	tpl, err = ts.Update(tpl)
	if err != nil {
		t.Fatalf("first Update failed: %v", err)
	}
	if tpl.Version != 2 {
		t.Fatalf("after first update Version = %d, want 2", tpl.Version)
	}

	// Second structural edit: add an element.
	tpl.Layout.Front.Elements = append(tpl.Layout.Front.Elements, models.Element{
		ID:       uuid.New(),
		Kind:     models.KindPhotoSlot,
		Side:     models.SideFront,
		Position: models.PercentRect{X: 60, Y: 10, Width: 22, Height: 35},
		Style:    models.ElementStyle{CornerRadiusPct: 50},
	})
	tpl, err = ts.Update(tpl)
	if err != nil {
		t.Fatalf("second Update failed: %v", err)
	}
	if tpl.Version != 3 {
		t.Errorf("after second update Version = %d, want 3", tpl.Version)
	}

	versions, err := vs.ListByTemplateID(tpl.ID)
	if err != nil {
		t.Fatalf("ListByTemplateID failed: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("snapshot count = %d, want 2", len(versions))
	}
	// Newest first.
	if versions[0].Version != 2 || versions[1].Version != 1 {
		t.Errorf("snapshot versions = [%d, %d], want [2, 1]", versions[0].Version, versions[1].Version)
	}
	// The version 1 snapshot holds the pre-edit position.
	if got := versions[1].Layout.Front.Elements[0].Position.X; got != 10 {
		t.Errorf("v1 snapshot element X = %v, want 10", got)
	}
}

// TestTemplateStore_IdempotentSave verifies that a save with no structural
// layout change does not bump the version or write a snapshot.
func TestTemplateStore_IdempotentSave(t *testing.T) {
	db := testDB(t)
	cleanTemplates(t, db, "Idempotent Card")
	t.Cleanup(func() { cleanTemplates(t, db, "Idempotent Card") })

	ts := NewTemplateStore(db)
	vs := NewTemplateVersionStore(db)

	tpl, err := ts.Create("Idempotent Card", testLayout(), nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tpl, err = ts.Update(tpl)
	if err != nil {
		t.Fatalf("no-op Update failed: %v", err)
	}
	if tpl.Version != 1 {
		t.Errorf("no-op save bumped Version to %d, want 1", tpl.Version)
	}

	count, err := vs.Count(tpl.ID)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("no-op save wrote %d snapshots, want 0", count)
	}
}

func TestTemplateStore_Update_StaleVersionRejected(t *testing.T) {
	db := testDB(t)
	cleanTemplates(t, db, "Stale Version Card")
	t.Cleanup(func() { cleanTemplates(t, db, "Stale Version Card") })

	ts := NewTemplateStore(db)

	tpl, err := ts.Create("Stale Version Card", testLayout(), nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Two editors load version 1. The first saves a structural change.
	stale := tpl.Clone()
	tpl.Layout.Front.Elements[0].Position.X = 30
	if _, err := ts.Update(tpl); err != nil {
		t.Fatalf("first editor's Update failed: %v", err)
	}

	// The second editor's save must be rejected, not silently merged.
	stale.Layout.Front.Elements[0].Position.Y = 40
	_, err = ts.Update(&stale)
	if !apperr.IsKind(err, apperr.KindConcurrentModification) {
		t.Errorf("stale Update: err = %v, want KindConcurrentModification", err)
	}
}

func TestTemplateStore_Update_LockedRejected(t *testing.T) {
	db := testDB(t)
	cleanTemplates(t, db, "Locked Card")
	t.Cleanup(func() { cleanTemplates(t, db, "Locked Card") })

	ts := NewTemplateStore(db)

	tpl, err := ts.Create("Locked Card", testLayout(), nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := ts.SetLocked(tpl.ID, true); err != nil {
		t.Fatalf("SetLocked failed: %v", err)
	}

	tpl.Layout.Front.Elements[0].Position.X = 30
	_, err = ts.Update(tpl)
	if !apperr.IsKind(err, apperr.KindConcurrentModification) {
		t.Errorf("Update of locked template: err = %v, want KindConcurrentModification", err)
	}
}

// TestTemplateStore_Delete covers both deletion paths: hard delete for an
// unreferenced template, soft delete when generated cards point at it.
func TestTemplateStore_Delete(t *testing.T) {
	db := testDB(t)
	ts := NewTemplateStore(db)
	cs := NewCardStore(db)

	t.Run("hard delete without card references", func(t *testing.T) {
		cleanTemplates(t, db, "Unreferenced Card")
		t.Cleanup(func() { cleanTemplates(t, db, "Unreferenced Card") })

		tpl, err := ts.Create("Unreferenced Card", testLayout(), nil)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if err := ts.Delete(tpl.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		var exists bool
		if err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM templates WHERE id = $1)", tpl.ID).Scan(&exists); err != nil {
			t.Fatalf("existence check failed: %v", err)
		}
		if exists {
			t.Error("unreferenced template should be hard deleted")
		}
	})

	t.Run("soft delete with card references", func(t *testing.T) {
		cleanTemplates(t, db, "Referenced Card")
		t.Cleanup(func() { cleanTemplates(t, db, "Referenced Card") })

		tpl, err := ts.Create("Referenced Card", testLayout(), nil)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		studentID := insertTestStudent(t, db, "R-TEST-DEL")
		_, err = cs.Create(&models.GeneratedCard{
			StudentID:       studentID,
			TemplateID:      tpl.ID,
			TemplateVersion: tpl.Version,
			FrontKey:        "cards/test/front.png",
		})
		if err != nil {
			t.Fatalf("card Create failed: %v", err)
		}

		if err := ts.Delete(tpl.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		// Row survives but is inactive and hidden from FindByID.
		var isActive bool
		if err := db.QueryRow("SELECT is_active FROM templates WHERE id = $1", tpl.ID).Scan(&isActive); err != nil {
			t.Fatalf("referenced template row should survive: %v", err)
		}
		if isActive {
			t.Error("referenced template should be marked inactive")
		}
		if _, err := ts.FindByID(tpl.ID); !apperr.IsKind(err, apperr.KindNotFound) {
			t.Errorf("FindByID after soft delete: err = %v, want KindNotFound", err)
		}
	})
}

func TestTemplateStore_FindByID_NotFound(t *testing.T) {
	db := testDB(t)
	ts := NewTemplateStore(db)

	_, err := ts.FindByID(uuid.New())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("FindByID of random id: err = %v, want KindNotFound", err)
	}
}

func TestTemplateVersionStore_FindByVersion(t *testing.T) {
	db := testDB(t)
	cleanTemplates(t, db, "History Lookup Card")
	t.Cleanup(func() { cleanTemplates(t, db, "History Lookup Card") })

	ts := NewTemplateStore(db)
	vs := NewTemplateVersionStore(db)

	tpl, err := ts.Create("History Lookup Card", testLayout(), nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	tpl.Layout.Front.Elements[0].Position.X = 25
	if _, err := ts.Update(tpl); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	snap, err := vs.FindByVersion(tpl.ID, 1)
	if err != nil {
		t.Fatalf("FindByVersion(1) failed: %v", err)
	}
	if snap.Version != 1 {
		t.Errorf("snapshot Version = %d, want 1", snap.Version)
	}

	if _, err := vs.FindByVersion(tpl.ID, 99); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("FindByVersion(99): err = %v, want KindNotFound", err)
	}
}
