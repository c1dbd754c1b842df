// Package ledger computes financial summaries for one billing period. It is
// pure: callers fetch the apartment roster, the period's payments and the
// period's expenses, and the functions here only do arithmetic over those
// values. Nothing in this package touches the database.
package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Period identifies one billing cycle.
type Period struct {
	Month int // 1-12
	Year  int
}

func (p Period) String() string {
	return fmt.Sprintf("%d/%d", p.Month, p.Year)
}

// Apartment is the roster entry the ledger needs. MonthlyFee is the amount
// the apartment owes for any one period.
type Apartment struct {
	ID              int64
	Floor           int
	ApartmentNumber int
	MonthlyFee      decimal.Decimal
}

// Payment is one recorded payment. The schema guarantees at most one per
// (apartment, month, year); the ledger re-checks that instead of trusting it.
type Payment struct {
	ID          int64
	ApartmentID int64
	Amount      decimal.Decimal
	Month       int
	Year        int
}

// Expense is a building-wide cost for the period.
type Expense struct {
	ID     int64
	Amount decimal.Decimal
}

// CollectionSummary is the result of reconciling one period.
type CollectionSummary struct {
	Period     Period
	Expected   decimal.Decimal // sum of monthly fees over the roster
	Collected  decimal.Decimal // sum of payment amounts
	Rate       decimal.Decimal // Collected / Expected, 0 when Expected is 0
	PaidCount  int
	Delinquent []Apartment // roster entries with no payment, by floor then number
}

// FloorCollection counts paid and unpaid apartments on one floor.
type FloorCollection struct {
	Floor  int
	Paid   int
	Unpaid int
}

// ComputeCollection reconciles one period: which apartments paid, which are
// delinquent, and how collected revenue compares to expected revenue.
//
// payments must already be filtered to the requested period; a payment for a
// different period, a negative amount, or a second payment for the same
// apartment is reported as an IntegrityError rather than skipped, so data
// corruption upstream is never hidden by a clean-looking summary.
func ComputeCollection(period Period, apartments []Apartment, payments []Payment) (CollectionSummary, error) {
	summary := CollectionSummary{
		Period:     period,
		Expected:   decimal.Zero,
		Collected:  decimal.Zero,
		Rate:       decimal.Zero,
		Delinquent: []Apartment{},
	}

	paid := make(map[int64]struct{}, len(payments))
	for _, payment := range payments {
		if payment.Month != period.Month || payment.Year != period.Year {
			return CollectionSummary{}, &IntegrityError{
				Kind:        PeriodMismatch,
				ApartmentID: payment.ApartmentID,
				RecordID:    payment.ID,
				Detail:      fmt.Sprintf("payment is for %d/%d, requested %s", payment.Month, payment.Year, period),
			}
		}
		if payment.Amount.IsNegative() {
			return CollectionSummary{}, &IntegrityError{
				Kind:        NegativeAmount,
				ApartmentID: payment.ApartmentID,
				RecordID:    payment.ID,
				Detail:      "payment amount is negative",
			}
		}
		if _, exists := paid[payment.ApartmentID]; exists {
			return CollectionSummary{}, &IntegrityError{
				Kind:        DuplicatePayment,
				ApartmentID: payment.ApartmentID,
				RecordID:    payment.ID,
				Detail:      fmt.Sprintf("second payment for apartment %d in %s", payment.ApartmentID, period),
			}
		}
		paid[payment.ApartmentID] = struct{}{}
		summary.Collected = summary.Collected.Add(payment.Amount)
	}

	for _, apartment := range apartments {
		if apartment.MonthlyFee.IsNegative() {
			return CollectionSummary{}, &IntegrityError{
				Kind:        NegativeAmount,
				ApartmentID: apartment.ID,
				Detail:      "monthly fee is negative",
			}
		}
		summary.Expected = summary.Expected.Add(apartment.MonthlyFee)
		if _, ok := paid[apartment.ID]; ok {
			summary.PaidCount++
		} else {
			summary.Delinquent = append(summary.Delinquent, apartment)
		}
	}

	sort.SliceStable(summary.Delinquent, func(i, j int) bool {
		if summary.Delinquent[i].Floor != summary.Delinquent[j].Floor {
			return summary.Delinquent[i].Floor < summary.Delinquent[j].Floor
		}
		return summary.Delinquent[i].ApartmentNumber < summary.Delinquent[j].ApartmentNumber
	})

	if summary.Expected.IsPositive() {
		summary.Rate = summary.Collected.Div(summary.Expected)
	}

	return summary, nil
}

// ComputeBalance returns collected revenue minus the period's expenses.
func ComputeBalance(collected decimal.Decimal, expenses []Expense) (decimal.Decimal, error) {
	net := collected
	for _, expense := range expenses {
		if expense.Amount.IsNegative() {
			return decimal.Zero, &IntegrityError{
				Kind:     NegativeAmount,
				RecordID: expense.ID,
				Detail:   "expense amount is negative",
			}
		}
		net = net.Sub(expense.Amount)
	}
	return net, nil
}

// PaidStatus reports whether an apartment has a payment in the given period's
// payments. duplicate is true when more than one payment exists, which
// violates the uniqueness constraint; the apartment is still treated as paid
// but the caller should log it.
func PaidStatus(apartmentID int64, payments []Payment) (paid bool, duplicate bool) {
	count := 0
	for _, payment := range payments {
		if payment.ApartmentID == apartmentID {
			count++
		}
	}
	return count >= 1, count > 1
}

// FloorBreakdown groups the roster by floor and counts paid vs unpaid
// apartments, in ascending floor order.
func FloorBreakdown(apartments []Apartment, payments []Payment) []FloorCollection {
	paid := make(map[int64]struct{}, len(payments))
	for _, payment := range payments {
		paid[payment.ApartmentID] = struct{}{}
	}

	byFloor := make(map[int]*FloorCollection)
	floors := []int{}
	for _, apartment := range apartments {
		entry, ok := byFloor[apartment.Floor]
		if !ok {
			entry = &FloorCollection{Floor: apartment.Floor}
			byFloor[apartment.Floor] = entry
			floors = append(floors, apartment.Floor)
		}
		if _, ok := paid[apartment.ID]; ok {
			entry.Paid++
		} else {
			entry.Unpaid++
		}
	}

	sort.Ints(floors)
	result := make([]FloorCollection, 0, len(floors))
	for _, floor := range floors {
		result = append(result, *byFloor[floor])
	}
	return result
}
