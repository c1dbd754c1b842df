package ledger

import "fmt"

// IntegrityKind classifies what made the input structurally invalid.
type IntegrityKind string

const (
	// DuplicatePayment means two payments exist for one apartment in the
	// same period, which the schema's unique constraint should prevent.
	DuplicatePayment IntegrityKind = "duplicate_payment"
	// NegativeAmount means a fee, payment or expense amount is below zero.
	NegativeAmount IntegrityKind = "negative_amount"
	// PeriodMismatch means a payment for another period slipped into the
	// input, i.e. the caller's filtering is broken.
	PeriodMismatch IntegrityKind = "period_mismatch"
)

// IntegrityError reports structurally invalid input together with the
// identity of the offending record, so callers can log exactly which row is
// corrupt instead of a generic failure.
type IntegrityError struct {
	Kind        IntegrityKind
	ApartmentID int64 // 0 when not tied to an apartment
	RecordID    int64 // payment or expense id, 0 when not applicable
	Detail      string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("ledger integrity: %s (apartment=%d record=%d): %s",
		e.Kind, e.ApartmentID, e.RecordID, e.Detail)
}
