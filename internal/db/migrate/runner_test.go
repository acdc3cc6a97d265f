package migrate

import (
	"io/fs"
	"strings"
	"testing"

	"go-leave/internal/db"
)

func TestRun_RejectsBadInput(t *testing.T) {
	if err := Run("", DirectionUp); err == nil {
		t.Fatal("expected error for empty dsn")
	}
	if err := Run("postgres://localhost/leave", "sideways"); err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestMigrationFS_PairsUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(db.MigrationFS, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
}
