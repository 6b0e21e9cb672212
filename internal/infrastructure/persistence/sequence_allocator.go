package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SequenceCounter is one row per (kind, scope, year) number series
type SequenceCounter struct {
	Kind     shared.SequenceKind `gorm:"primaryKey;size:8"`
	ScopeKey string              `gorm:"primaryKey;size:64"`
	Year     int                 `gorm:"primaryKey"`
	Value    int64               `gorm:"not null"`
}

// TableName overrides the GORM table name
func (SequenceCounter) TableName() string {
	return "sequence_counters"
}

// DBSequenceAllocator allocates document numbers from a database counter.
// The counter advance is a single upsert statement, so two concurrent
// callers can never observe the same value: the database serializes the
// increments even across processes.
type DBSequenceAllocator struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDBSequenceAllocator creates a new database-backed sequence allocator
func NewDBSequenceAllocator(db *gorm.DB, logger *zap.Logger) *DBSequenceAllocator {
	return &DBSequenceAllocator{db: db, logger: logger}
}

// Next returns the next document number in the series, formatted
// <PREFIX>-<YYYY>-<NNNN>. The counter is zero-padded to four digits and
// widens naturally past 9999. When the counter cannot be advanced the
// allocator degrades to a timestamp-derived number so callers are never
// blocked on a numbering failure.
func (a *DBSequenceAllocator) Next(ctx context.Context, kind shared.SequenceKind, scopeKey string, year int) (string, error) {
	var value int64
	err := a.db.WithContext(ctx).Raw(
		`INSERT INTO sequence_counters (kind, scope_key, year, value)
		 VALUES (?, ?, ?, 1)
		 ON CONFLICT (kind, scope_key, year)
		 DO UPDATE SET value = sequence_counters.value + 1
		 RETURNING value`,
		kind, scopeKey, year,
	).Scan(&value).Error
	if err != nil {
		fallback := fmt.Sprintf("%s-%04d-T%d", kind.Prefix(), year, time.Now().UnixNano())
		a.logger.Warn("sequence allocation failed, using timestamp fallback",
			zap.String("kind", string(kind)),
			zap.String("scope_key", scopeKey),
			zap.Int("year", year),
			zap.String("fallback", fallback),
			zap.Error(err),
		)
		return fallback, nil
	}

	return fmt.Sprintf("%s-%04d-%04d", kind.Prefix(), year, value), nil
}

var _ shared.SequenceAllocator = (*DBSequenceAllocator)(nil)
