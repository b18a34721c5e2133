// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"cardpress/internal/database"
	"cardpress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "cardpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "cardpress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanTemplates removes test templates by name. Call in t.Cleanup().
func cleanTemplates(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM generated_cards WHERE template_id IN (SELECT id FROM templates WHERE name = $1)", name)
		db.Exec("DELETE FROM templates WHERE name = $1", name)
	}
}

// cleanStudents removes test students by roll ID. Call in t.Cleanup().
func cleanStudents(t *testing.T, db *sql.DB, rollIDs ...string) {
	t.Helper()
	for _, rollID := range rollIDs {
		db.Exec("DELETE FROM students WHERE roll_id = $1", rollID)
	}
}

// cleanClasses removes test classes by name. Call in t.Cleanup().
func cleanClasses(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		db.Exec("DELETE FROM classes WHERE name = $1", name)
	}
}

// testLayout returns a minimal valid layout for store tests.
func testLayout() models.TemplateLayout {
	return models.TemplateLayout{
		Front: models.SideLayout{
			BackgroundKey: "backgrounds/test-front.png",
			Size:          models.CanvasSize{Width: 1000, Height: 640},
			Elements: []models.Element{
				{
					ID:       uuid.New(),
					Kind:     models.KindBoundText,
					Side:     models.SideFront,
					Position: models.PercentRect{X: 10, Y: 10, Width: 50, Height: 10},
					Style: models.ElementStyle{
						FontSize:   14,
						FontFamily: "sans",
						Color:      "#1a1a1a",
						Align:      models.AlignLeft,
						BoundField: models.FieldStudentName,
					},
				},
			},
		},
		Grid: models.DefaultGridSettings(),
	}
}

// insertTestStudent creates a class and a student for card FK tests.
func insertTestStudent(t *testing.T, db *sql.DB, rollID string) uuid.UUID {
	t.Helper()

	var classID uuid.UUID
	err := db.QueryRow(
		"INSERT INTO classes (name, section) VALUES ($1, $2) RETURNING id",
		"Test Class "+rollID, "A",
	).Scan(&classID)
	if err != nil {
		t.Fatalf("failed to insert test class: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM classes WHERE id = $1", classID) })

	var studentID uuid.UUID
	err = db.QueryRow(
		"INSERT INTO students (name, roll_id, class_id) VALUES ($1, $2, $3) RETURNING id",
		"Test Student", rollID, classID,
	).Scan(&studentID)
	if err != nil {
		t.Fatalf("failed to insert test student: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM students WHERE id = $1", studentID) })

	return studentID
}
