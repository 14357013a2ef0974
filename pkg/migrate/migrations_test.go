package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voltpath/labstock-backend/pkg/migrate"
)

func TestMigrationsDirectoryIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestComponentsMigrationConstraints(t *testing.T) {
	content := readMigration(t, "*_create_components.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS components",
		"CHECK (quantity >= 0)",
		"part_number TEXT NOT NULL",
		"idx_components_part_number",
		"status component_status NOT NULL DEFAULT 'Active'",
		"DROP TABLE IF EXISTS components",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestTransactionLogsMigrationConstraints(t *testing.T) {
	content := readMigration(t, "*_create_transaction_logs.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS transaction_logs",
		"REFERENCES components(id) ON DELETE RESTRICT",
		"CHECK (quantity > 0)",
		"CHECK (quantity_after >= 0)",
		"approved_by UUID REFERENCES users(id)",
		"DROP TABLE IF EXISTS transaction_logs",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestNotificationsMigrationConstraints(t *testing.T) {
	content := readMigration(t, "*_create_notifications.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS notifications",
		"idx_notifications_dedup",
		"expires_at TIMESTAMPTZ NOT NULL",
		"data JSONB",
		"DROP TABLE IF EXISTS notifications",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
