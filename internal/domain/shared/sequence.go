package shared

import "context"

// SequenceKind selects the document-number series to draw from
type SequenceKind string

const (
	SequenceKindRFQ     SequenceKind = "RFQ"
	SequenceKindQuote   SequenceKind = "QT"
	SequenceKindOrder   SequenceKind = "ORD"
	SequenceKindInvoice SequenceKind = "INV"
)

// Prefix returns the human-readable document prefix for the kind
func (k SequenceKind) Prefix() string {
	return string(k)
}

// PlatformScope is the scope key for platform-wide number series
const PlatformScope = ""

// SequenceAllocator hands out collision-free, year-scoped document numbers
// formatted <PREFIX>-<YYYY>-<NNNN>. Implementations must guarantee that no two
// concurrent callers receive the same number for the same (kind, scope, year);
// on allocator failure they fall back to a timestamp-derived number and log a
// warning rather than blocking the caller.
type SequenceAllocator interface {
	Next(ctx context.Context, kind SequenceKind, scopeKey string, year int) (string, error)
}
