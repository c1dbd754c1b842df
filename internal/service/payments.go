package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/asalkic/zgrada-server/internal/models"
	"github.com/asalkic/zgrada-server/internal/repository"
)

// ListPayments returns payments, optionally filtered by period and
// apartment. Tenants are always restricted to their own apartment; the
// apartmentID filter is admin only.
func (s *DefaultService) ListPayments(ctx context.Context, principal Principal, month, year int, apartmentID int64) ([]models.PaymentWithApartment, error) {
	filter := repository.PaymentFilter{Month: month, Year: year}

	if principal.IsAdmin() {
		filter.ApartmentID = apartmentID
	} else {
		if principal.ApartmentID == nil {
			return []models.PaymentWithApartment{}, nil
		}
		filter.ApartmentID = *principal.ApartmentID
	}

	payments, err := s.repo.ListPayments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	return payments, nil
}

// CreatePayment records one monthly payment. Admin only. A second payment
// for the same (apartment, month, year) is rejected, never overwritten.
func (s *DefaultService) CreatePayment(ctx context.Context, principal Principal, req models.CreatePaymentRequest) (*models.Payment, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	if req.Amount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if !validPeriod(req.Month, req.Year) {
		return nil, ErrInvalidPeriod
	}

	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		return nil, err
	}

	apartment, err := s.repo.GetApartment(ctx, req.ApartmentID)
	if err != nil {
		return nil, fmt.Errorf("error getting apartment: %w", err)
	}
	if apartment == nil {
		return nil, ErrNotFound
	}

	createdBy := principal.UserID
	payment := &models.Payment{
		ApartmentID:   req.ApartmentID,
		Amount:        req.Amount,
		PaymentDate:   paymentDate,
		Month:         req.Month,
		Year:          req.Year,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		CreatedBy:     &createdBy,
	}

	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicatePayment
		}
		return nil, fmt.Errorf("error creating payment: %w", err)
	}

	s.log.Info("payment recorded",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("apartment_id", payment.ApartmentID),
		zap.Int("month", payment.Month),
		zap.Int("year", payment.Year))

	return payment, nil
}

// DeletePayment removes a payment record. Admin only; hard delete.
func (s *DefaultService) DeletePayment(ctx context.Context, principal Principal, id int64) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}

	payment, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting payment: %w", err)
	}
	if payment == nil {
		return ErrNotFound
	}

	if err := s.repo.DeletePayment(ctx, id); err != nil {
		return fmt.Errorf("error deleting payment: %w", err)
	}

	s.log.Info("payment deleted",
		zap.Int64("payment_id", id),
		zap.Int64("apartment_id", payment.ApartmentID))

	return nil
}
