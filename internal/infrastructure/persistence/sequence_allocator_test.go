package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/b2bmarket/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock
}

const sequenceUpsert = `INSERT INTO sequence_counters (kind, scope_key, year, value)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (kind, scope_key, year)
		 DO UPDATE SET value = sequence_counters.value + 1
		 RETURNING value`

func TestSequenceAllocatorFormatsNumber(t *testing.T) {
	db, mock := newMockGorm(t)

	mock.ExpectQuery(regexp.QuoteMeta(sequenceUpsert)).
		WithArgs("ORD", "", 2026).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(42))

	allocator := NewDBSequenceAllocator(db, zap.NewNop())
	number, err := allocator.Next(context.Background(), shared.SequenceKindOrder, shared.PlatformScope, 2026)

	require.NoError(t, err)
	assert.Equal(t, "ORD-2026-0042", number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceAllocatorIsScopedByKindAndYear(t *testing.T) {
	db, mock := newMockGorm(t)

	mock.ExpectQuery(regexp.QuoteMeta(sequenceUpsert)).
		WithArgs("INV", "seller-1", 2027).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(1))

	allocator := NewDBSequenceAllocator(db, zap.NewNop())
	number, err := allocator.Next(context.Background(), shared.SequenceKindInvoice, "seller-1", 2027)

	require.NoError(t, err)
	assert.Equal(t, "INV-2027-0001", number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceAllocatorWidensPastFourDigits(t *testing.T) {
	db, mock := newMockGorm(t)

	mock.ExpectQuery(regexp.QuoteMeta(sequenceUpsert)).
		WithArgs("QT", "", 2026).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(12345))

	allocator := NewDBSequenceAllocator(db, zap.NewNop())
	number, err := allocator.Next(context.Background(), shared.SequenceKindQuote, shared.PlatformScope, 2026)

	require.NoError(t, err)
	assert.Equal(t, "QT-2026-12345", number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceAllocatorFallsBackOnFailure(t *testing.T) {
	db, mock := newMockGorm(t)

	mock.ExpectQuery(regexp.QuoteMeta(sequenceUpsert)).
		WithArgs("QT", "", 2026).
		WillReturnError(errors.New("connection reset"))

	allocator := NewDBSequenceAllocator(db, zap.NewNop())
	number, err := allocator.Next(context.Background(), shared.SequenceKindQuote, shared.PlatformScope, 2026)

	require.NoError(t, err)
	assert.Regexp(t, `^QT-2026-T\d+$`, number)
	assert.NoError(t, mock.ExpectationsWereMet())
}
