package mysql

import (
	"context"
	"fmt"
	"time"

	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hamed0406/sanitycheck/internal/domain"
	"github.com/hamed0406/sanitycheck/internal/repo"
)

var _ repo.ResultStore = (*Store)(nil)

// entryRow is the gorm model for the sanity_tests table.
type entryRow struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement"`
	RunID       string  `gorm:"size:64;not null;index:idx_sanity_tests_run"`
	Description string  `gorm:"size:512;not null"`
	Result      string  `gorm:"size:8;not null"`
	Error       *string `gorm:"type:text"`
}

func (entryRow) TableName() string { return "sanity_tests" }

type Store struct {
	db *gorm.DB
}

// Open connects with a go-sql-driver DSN and migrates the table.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	if err := db.AutoMigrate(&entryRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Append(ctx context.Context, e *domain.ReportEntry) error {
	if err := e.Valid(); err != nil {
		return err
	}
	row := entryRow{
		RunID:       e.RunID,
		Description: e.Description,
		Result:      string(e.Result),
		Error:       e.Error,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (s *Store) QueryByRun(ctx context.Context, runID string) ([]domain.ReportEntry, error) {
	var rows []entryRow
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	out := make([]domain.ReportEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ReportEntry{
			RunID:       r.RunID,
			Description: r.Description,
			Result:      domain.Result(r.Result),
			Error:       r.Error,
		})
	}
	return out, nil
}
