package mysql

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/hamed0406/sanitycheck/internal/domain"
)

func TestMySQLStore_AppendQuery(t *testing.T) {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		t.Skip("MYSQL_DSN not set; skipping MySQL integration test")
	}
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	runID := uuid.NewString()
	a := domain.Passed(runID, "health")
	b := domain.Failed(runID, "creds", "Invalid database credentials format")
	for _, e := range []*domain.ReportEntry{&a, &b} {
		if err := s.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	got, err := s.QueryByRun(ctx, runID)
	if err != nil {
		t.Fatalf("QueryByRun: %v", err)
	}
	if len(got) != 2 || got[0].Result != domain.Pass || got[1].ErrorText() != "Invalid database credentials format" {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestEntryRow_TableName(t *testing.T) {
	if got := (entryRow{}).TableName(); got != "sanity_tests" {
		t.Fatalf("TableName()=%q", got)
	}
}
