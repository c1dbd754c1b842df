package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/asalkic/zgrada-server/internal/ledger"
	"github.com/asalkic/zgrada-server/internal/models"
	"github.com/asalkic/zgrada-server/internal/repository"
)

func toRoster(apartments []models.ApartmentWithTenant) []ledger.Apartment {
	roster := make([]ledger.Apartment, 0, len(apartments))
	for _, apartment := range apartments {
		roster = append(roster, ledger.Apartment{
			ID:              apartment.ID,
			Floor:           apartment.Floor,
			ApartmentNumber: apartment.ApartmentNumber,
			MonthlyFee:      apartment.MonthlyFee,
		})
	}
	return roster
}

func toLedgerPayments(payments []models.PaymentWithApartment) []ledger.Payment {
	result := make([]ledger.Payment, 0, len(payments))
	for _, payment := range payments {
		result = append(result, ledger.Payment{
			ID:          payment.ID,
			ApartmentID: payment.ApartmentID,
			Amount:      payment.Amount,
			Month:       payment.Month,
			Year:        payment.Year,
		})
	}
	return result
}

func toLedgerExpenses(expenses []models.Expense) []ledger.Expense {
	result := make([]ledger.Expense, 0, len(expenses))
	for _, expense := range expenses {
		result = append(result, ledger.Expense{ID: expense.ID, Amount: expense.Amount})
	}
	return result
}

// MonthlyReport reconciles one billing period: expected vs collected
// revenue, the delinquent apartments, total expenses and the net balance.
// Admin only.
func (s *DefaultService) MonthlyReport(ctx context.Context, principal Principal, month, year int) (*models.MonthlyReportResponse, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	if !validPeriod(month, year) {
		return nil, ErrInvalidPeriod
	}

	apartments, err := s.repo.ListApartmentsWithTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing apartments: %w", err)
	}

	payments, err := s.repo.ListPayments(ctx, repository.PaymentFilter{Month: month, Year: year})
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}

	expenses, err := s.repo.ListExpenses(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("error listing expenses: %w", err)
	}

	period := ledger.Period{Month: month, Year: year}
	summary, err := ledger.ComputeCollection(period, toRoster(apartments), toLedgerPayments(payments))
	if err != nil {
		// Structurally invalid rows in the store; the handler reports this
		// distinctly from an empty period.
		s.log.Error("period reconciliation failed", zap.Int("month", month), zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	balance, err := ledger.ComputeBalance(summary.Collected, toLedgerExpenses(expenses))
	if err != nil {
		s.log.Error("balance computation failed", zap.Int("month", month), zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	totalExpenses := decimal.Zero
	for _, expense := range expenses {
		totalExpenses = totalExpenses.Add(expense.Amount)
	}

	tenantNames := make(map[int64]*string, len(apartments))
	for _, apartment := range apartments {
		tenantNames[apartment.ID] = apartment.TenantName
	}

	delinquent := make([]models.DelinquentEntry, 0, len(summary.Delinquent))
	for _, apartment := range summary.Delinquent {
		entry := models.DelinquentEntry{
			ApartmentID:     apartment.ID,
			ApartmentNumber: apartment.ApartmentNumber,
			Floor:           apartment.Floor,
			TenantName:      tenantNames[apartment.ID],
		}
		for _, full := range apartments {
			if full.ID == apartment.ID {
				entry.BuildingNumber = full.BuildingNumber
				break
			}
		}
		delinquent = append(delinquent, entry)
	}

	return &models.MonthlyReportResponse{
		Status:          "success",
		Month:           month,
		Year:            year,
		Expected:        summary.Expected.StringFixed(2),
		Collected:       summary.Collected.StringFixed(2),
		Rate:            summary.Rate.InexactFloat64(),
		PaidCount:       summary.PaidCount,
		DelinquentCount: len(summary.Delinquent),
		Delinquent:      delinquent,
		TotalExpenses:   totalExpenses.StringFixed(2),
		Balance:         balance.StringFixed(2),
	}, nil
}

// FloorReport breaks one period's collection down by floor. Admin only.
func (s *DefaultService) FloorReport(ctx context.Context, principal Principal, month, year int) (*models.FloorReportResponse, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	if !validPeriod(month, year) {
		return nil, ErrInvalidPeriod
	}

	apartments, err := s.repo.ListApartmentsWithTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing apartments: %w", err)
	}

	payments, err := s.repo.ListPayments(ctx, repository.PaymentFilter{Month: month, Year: year})
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}

	breakdown := ledger.FloorBreakdown(toRoster(apartments), toLedgerPayments(payments))

	floors := make([]models.FloorEntry, 0, len(breakdown))
	for _, floor := range breakdown {
		floors = append(floors, models.FloorEntry{Floor: floor.Floor, Paid: floor.Paid, Unpaid: floor.Unpaid})
	}

	return &models.FloorReportResponse{
		Status: "success",
		Month:  month,
		Year:   year,
		Floors: floors,
	}, nil
}

// YearTrend reconciles every month of a year, for the collection trend
// chart. Admin only.
func (s *DefaultService) YearTrend(ctx context.Context, principal Principal, year int) (*models.TrendResponse, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	if year < 2000 {
		return nil, ErrInvalidPeriod
	}

	apartments, err := s.repo.ListApartmentsWithTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing apartments: %w", err)
	}
	roster := toRoster(apartments)

	months := make([]models.TrendEntry, 0, 12)
	for month := 1; month <= 12; month++ {
		payments, err := s.repo.ListPayments(ctx, repository.PaymentFilter{Month: month, Year: year})
		if err != nil {
			return nil, fmt.Errorf("error listing payments: %w", err)
		}

		summary, err := ledger.ComputeCollection(ledger.Period{Month: month, Year: year}, roster, toLedgerPayments(payments))
		if err != nil {
			s.log.Error("period reconciliation failed", zap.Int("month", month), zap.Int("year", year), zap.Error(err))
			return nil, err
		}

		months = append(months, models.TrendEntry{
			Month:     month,
			Expected:  summary.Expected.StringFixed(2),
			Collected: summary.Collected.StringFixed(2),
			Rate:      summary.Rate.InexactFloat64(),
		})
	}

	return &models.TrendResponse{
		Status: "success",
		Year:   year,
		Months: months,
	}, nil
}

// TenantStatus is the tenant-facing payment status for one period. Only a
// caller bound to an apartment can ask for it.
func (s *DefaultService) TenantStatus(ctx context.Context, principal Principal, month, year int) (*models.TenantStatusResponse, error) {
	if principal.ApartmentID == nil {
		return nil, ErrForbidden
	}
	if !validPeriod(month, year) {
		return nil, ErrInvalidPeriod
	}

	apartmentID := *principal.ApartmentID
	payments, err := s.repo.ListPayments(ctx, repository.PaymentFilter{
		Month:       month,
		Year:        year,
		ApartmentID: apartmentID,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}

	paid, duplicate := ledger.PaidStatus(apartmentID, toLedgerPayments(payments))
	if duplicate {
		// The unique constraint should make this impossible; worth an alarm.
		s.log.Warn("duplicate payments for one period",
			zap.Int64("apartment_id", apartmentID),
			zap.Int("month", month),
			zap.Int("year", year))
	}

	response := &models.TenantStatusResponse{
		Status:      "success",
		Month:       month,
		Year:        year,
		ApartmentID: apartmentID,
		Paid:        paid,
	}
	if len(payments) > 0 {
		response.LastPayment = &payments[0].Payment
	}

	return response, nil
}
