package store

import (
	"context"
	"database/sql"
	"fmt"

	"directory-service/internal/models"
)

// CreatePayment inserts a new pending payment
func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (business_id, reference, amount, payment_type, package_type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, payment, query,
		payment.BusinessID, payment.Reference, payment.Amount,
		payment.PaymentType, payment.PackageType, payment.Status)
}

// GetPaymentByReference retrieves a payment by its external reference
func (s *Store) GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.GetContext(ctx, &payment, "SELECT * FROM payments WHERE reference = $1", reference)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: payment %s", models.ErrNotFound, reference)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPaymentsByBusinessID retrieves payments for a business, newest first
func (s *Store) GetPaymentsByBusinessID(ctx context.Context, businessID int64) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.SelectContext(ctx, &payments,
		"SELECT * FROM payments WHERE business_id = $1 ORDER BY created_at DESC", businessID)
	return payments, err
}

// FinalizePaymentTx finalizes a payment and applies its business-side effect
// in one transaction. The payment row is locked first; if it is already in a
// terminal state the transaction is abandoned and ErrAlreadyFinalized is
// returned with no mutation, which is what makes duplicate webhook delivery
// safe. The business row is locked before apply mutates it, and the payment
// update, business update and processed-webhook record commit or roll back
// together.
func (s *Store) FinalizePaymentTx(
	ctx context.Context,
	reference, status, transactionID, rawPayload string,
	apply func(payment *models.Payment, business *models.Business) error,
) (*models.Payment, *models.Business, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var payment models.Payment
	err = tx.GetContext(ctx, &payment,
		"SELECT * FROM payments WHERE reference = $1 FOR UPDATE", reference)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("%w: payment %s", models.ErrNotFound, reference)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock payment row: %w", err)
	}

	business, err := lockBusiness(ctx, tx, payment.BusinessID)
	if err != nil {
		return nil, nil, err
	}

	if err := payment.Finalize(status, transactionID, rawPayload); err != nil {
		return nil, nil, err
	}

	if payment.Status == models.PaymentStatusCompleted && apply != nil {
		if err := apply(&payment, business); err != nil {
			return nil, nil, err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, transaction_id = $2, raw_payload = $3, updated_at = NOW()
		WHERE id = $4`,
		payment.Status, payment.TransactionID, payment.RawPayload, payment.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update payment: %w", err)
	}

	if err := saveBusinessTx(ctx, tx, business); err != nil {
		return nil, nil, err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO processed_webhooks (reference, outcome) VALUES ($1, $2) ON CONFLICT (reference) DO NOTHING",
		payment.Reference, payment.Status)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record processed webhook: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit payment finalization: %w", err)
	}

	return &payment, business, nil
}
