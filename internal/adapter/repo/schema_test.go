package repo

import (
	"strings"
	"testing"
)

// The DDL must declare every column Record writes and GetByID reads.
func TestJournalSchemaDeclaresJournalColumns(t *testing.T) {
	if !strings.Contains(journalSchema, "CREATE TABLE IF NOT EXISTS render_journal") {
		t.Fatal("schema does not create render_journal")
	}
	columns := []string{
		"id", "key", "generation", "state",
		"error_message", "byte_size", "duration_ms", "created_at",
	}
	for _, col := range columns {
		if !strings.Contains(journalSchema, col) {
			t.Fatalf("schema missing column %q", col)
		}
	}
}
