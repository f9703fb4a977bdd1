package repo_test

import (
	"testing"

	"github.com/hamed0406/sanitycheck/internal/repo"
	"github.com/hamed0406/sanitycheck/internal/repo/memory"
	"github.com/hamed0406/sanitycheck/internal/repo/mysql"
	pg "github.com/hamed0406/sanitycheck/internal/repo/postgres"
	"github.com/hamed0406/sanitycheck/internal/repo/sqlite"
)

// Compile-time interface satisfaction checks.
// Using external test package avoids import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.ResultStore = memory.New()
	var _ repo.AlertStore = memory.NewAlerts()

	var _ repo.ResultStore = (*pg.Store)(nil)
	var _ repo.AlertStore = (*pg.Store)(nil)
	var _ repo.ResultStore = (*sqlite.Store)(nil)
	var _ repo.ResultStore = (*mysql.Store)(nil)
}
