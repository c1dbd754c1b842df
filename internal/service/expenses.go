package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/asalkic/zgrada-server/internal/models"
)

// ListExpenses returns building expenses, optionally filtered by period.
// Visible to every authenticated user.
func (s *DefaultService) ListExpenses(ctx context.Context, principal Principal, month, year int) ([]models.Expense, error) {
	expenses, err := s.repo.ListExpenses(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("error listing expenses: %w", err)
	}
	return expenses, nil
}

// CreateExpense records a building-wide cost. Admin only.
func (s *DefaultService) CreateExpense(ctx context.Context, principal Principal, req models.CreateExpenseRequest) (*models.Expense, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	if req.Amount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if !validPeriod(req.Month, req.Year) {
		return nil, ErrInvalidPeriod
	}

	expenseDate, err := parseDate(req.ExpenseDate)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		Title:       req.Title,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		ExpenseDate: expenseDate,
		Month:       req.Month,
		Year:        req.Year,
		CreatedBy:   principal.UserID,
	}

	if err := s.repo.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("error creating expense: %w", err)
	}

	s.log.Info("expense recorded",
		zap.Int64("expense_id", expense.ID),
		zap.String("category", expense.Category),
		zap.Int("month", expense.Month),
		zap.Int("year", expense.Year))

	return expense, nil
}

// DeleteExpense removes an expense record. Admin only.
func (s *DefaultService) DeleteExpense(ctx context.Context, principal Principal, id int64) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}

	expense, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting expense: %w", err)
	}
	if expense == nil {
		return ErrNotFound
	}

	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("error deleting expense: %w", err)
	}

	return nil
}
