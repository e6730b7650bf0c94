package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/registra-app/registra-backend/pkg/migrate"
)

func TestRetentionColumnsMigrationContents(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_add_student_retention_columns.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no student retention migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"ADD COLUMN IF NOT EXISTS status TEXT NOT NULL DEFAULT 'active'",
		"ADD COLUMN IF NOT EXISTS inactive_at",
		"CREATE INDEX IF NOT EXISTS idx_students_inactive_at",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestLicenseLifecycleMigrationContents(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_add_license_lifecycle_columns.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no license lifecycle migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	for _, sub := range []string{"activated_at", "initial_purge_at", "expired_applied_at"} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected column %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}
