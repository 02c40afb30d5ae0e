package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is an issued bill. Billing fields are a snapshot taken when the
// invoice is written; later customer edits never change them.
type Invoice struct {
	ID               uuid.UUID
	InvoiceNumber    string
	IssueDate        time.Time
	CustomerID       *uuid.UUID
	BillingName      string
	BillingAddress   string
	BillingHonorific string
	Notes            string
	TotalAmount      int64
	Items            []InvoiceItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

// InvoiceItem is one line of an invoice. Amount is derived by LineAmount.
type InvoiceItem struct {
	ID        uuid.UUID
	InvoiceID uuid.UUID
	ItemName  string
	Quantity  decimal.Decimal
	UnitPrice int64
	Amount    int64
	SortOrder int
}

// BulkDeleteMaxIDs and BulkDeleteBatchSize bound the bulk delete operation.
const (
	BulkDeleteMaxIDs    = 100
	BulkDeleteBatchSize = 10
)

// BulkFailure records why one id in a bulk operation failed.
type BulkFailure struct {
	ID    uuid.UUID `json:"id"`
	Error string    `json:"error"`
}

// BulkResult collects per-item outcomes of a bulk operation.
// Partial success is a normal result, not an error.
type BulkResult struct {
	Success []uuid.UUID   `json:"success"`
	Failed  []BulkFailure `json:"failed"`
}

// AllFailed reports whether nothing in the batch succeeded.
func (r BulkResult) AllFailed() bool {
	return len(r.Success) == 0 && len(r.Failed) > 0
}
