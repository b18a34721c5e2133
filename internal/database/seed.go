package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"cardpress/internal/models"
)

// Seed populates the database with initial development data: a sample
// class, a few students, and a starter template so the editor has
// something to open. It is a no-op when classes already exist.
func Seed(db *sql.DB) error {
	// Check if any classes exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM classes").Scan(&count); err != nil {
		return fmt.Errorf("seed check classes: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	var classID uuid.UUID
	err := db.QueryRow(`
		INSERT INTO classes (name, section)
		VALUES ($1, $2)
		RETURNING id
	`, "Grade 5", "A").Scan(&classID)
	if err != nil {
		return fmt.Errorf("seed insert class: %w", err)
	}

	students := []struct {
		name   string
		rollID string
	}{
		{"Ana Popescu", "R-1001"},
		{"Mihai Ionescu", "R-1002"},
		{"Elena Dumitru", "R-1003"},
	}
	for _, s := range students {
		_, err := db.Exec(`
			INSERT INTO students (name, roll_id, class_id)
			VALUES ($1, $2, $3)
		`, s.name, s.rollID, classID)
		if err != nil {
			return fmt.Errorf("seed insert student: %w", err)
		}
	}

	layout := models.TemplateLayout{
		Front: models.SideLayout{
			BackgroundKey: "backgrounds/starter-front.png",
			Size:          models.CanvasSize{Width: 1000, Height: 640},
			Elements: []models.Element{
				{
					ID:       uuid.New(),
					Kind:     models.KindBoundText,
					Side:     models.SideFront,
					Position: models.PercentRect{X: 30, Y: 10, Width: 60, Height: 10},
					Pixels:   models.PixelRect{X: 300, Y: 64, Width: 600, Height: 64},
					Style: models.ElementStyle{
						FontSize:   20,
						FontFamily: "sans-bold",
						Color:      "#1a1a1a",
						Align:      models.AlignLeft,
						BoundField: models.FieldStudentName,
					},
				},
				{
					ID:       uuid.New(),
					Kind:     models.KindPhotoSlot,
					Side:     models.SideFront,
					Position: models.PercentRect{X: 4, Y: 10, Width: 22, Height: 35},
					Pixels:   models.PixelRect{X: 40, Y: 64, Width: 220, Height: 224},
					Style:    models.ElementStyle{CornerRadiusPct: 50},
				},
				{
					ID:       uuid.New(),
					Kind:     models.KindQRSlot,
					Side:     models.SideFront,
					Position: models.PercentRect{X: 76, Y: 60, Width: 18, Height: 28},
					Pixels:   models.PixelRect{X: 760, Y: 384, Width: 180, Height: 179},
					Style:    models.ElementStyle{PayloadTemplate: "{studentId}|{rollId}"},
				},
			},
		},
		Grid: models.DefaultGridSettings(),
	}

	layoutJSON, err := json.Marshal(layout)
	if err != nil {
		return fmt.Errorf("seed marshal layout: %w", err)
	}
	assignedJSON, err := json.Marshal([]uuid.UUID{classID})
	if err != nil {
		return fmt.Errorf("seed marshal assigned classes: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO templates (name, layout, assigned_classes)
		VALUES ($1, $2, $3)
	`, "Standard Student Card", layoutJSON, assignedJSON)
	if err != nil {
		return fmt.Errorf("seed insert template: %w", err)
	}

	slog.Info("database seeded with sample class, students and template",
		"class", "Grade 5 - A",
		"students", len(students),
	)

	return nil
}
