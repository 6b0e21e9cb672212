package persistence

import (
	"strings"

	"github.com/b2bmarket/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to
// DESC on anything unexpected.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks the sort field against a whitelist. Sorting is the
// one place user input reaches raw SQL, so anything off the list falls back
// to the default field.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// RFQSortFields contains allowed sort fields for RFQs
var RFQSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"rfq_number": true,
	"status":     true,
	"item_name":  true,
	"quantity":   true,
}

// QuoteSortFields contains allowed sort fields for quotes
var QuoteSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"quote_number": true,
	"status":       true,
	"total_price":  true,
	"valid_until":  true,
	"revision":     true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"status":       true,
	"total_amount": true,
	"confirmed_at": true,
	"shipped_at":   true,
	"delivered_at": true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"status":         true,
	"total":          true,
	"issued_at":      true,
	"due_date":       true,
}

// PerformanceSortFields contains allowed sort fields for seller performance records
var PerformanceSortFields = map[string]bool{
	"id":              true,
	"recorded_at":     true,
	"order_number":    true,
	"days_to_deliver": true,
}

// findPaginated runs the count-then-page query shared by all list endpoints.
// The base query must already carry the Model and any Where conditions.
func findPaginated[T any](base *gorm.DB, filter shared.Filter, allowedSortFields map[string]bool, defaultSortField string) (*shared.Paginated[T], error) {
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	orderBy := ValidateSortField(filter.OrderBy, allowedSortFields, defaultSortField)
	orderDir := ValidateSortOrder(filter.OrderDir)

	var items []T
	if err := base.
		Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(items, total, page, pageSize)
	return &result, nil
}

// saveWithVersionCheck persists the aggregate guarded by its version column.
// The row is only written when the stored version still matches the version
// the caller loaded; the version is bumped as part of the same update.
func saveWithVersionCheck(tx *gorm.DB, aggregate shared.AggregateRoot) error {
	loadedVersion := aggregate.GetVersion()
	aggregate.IncrementVersion()

	result := tx.Model(aggregate).
		Where("id = ? AND version = ?", aggregate.GetID(), loadedVersion).
		Select("*").
		Omit("created_at").
		Updates(aggregate)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
