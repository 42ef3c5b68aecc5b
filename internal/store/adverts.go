package store

import (
	"context"
	"database/sql"
	"fmt"

	"directory-service/internal/models"
)

// GetAdvertByID retrieves an advert by ID
func (s *Store) GetAdvertByID(ctx context.Context, id int64) (*models.Advert, error) {
	var advert models.Advert
	err := s.db.GetContext(ctx, &advert, "SELECT * FROM adverts WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: advert %d", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &advert, nil
}

// GetAdvertsByBusinessID retrieves adverts for a business, newest first
func (s *Store) GetAdvertsByBusinessID(ctx context.Context, businessID int64) ([]models.Advert, error) {
	var adverts []models.Advert
	err := s.db.SelectContext(ctx, &adverts,
		"SELECT * FROM adverts WHERE business_id = $1 ORDER BY created_at DESC", businessID)
	return adverts, err
}

// CreateAdvertTx consumes one advert slot and inserts the advert in a single
// transaction, with the business row held under FOR UPDATE for the whole
// read-modify-write. A crash between decrement and insert leaves neither.
func (s *Store) CreateAdvertTx(ctx context.Context, advert *models.Advert) (*models.Business, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	business, err := lockBusiness(ctx, tx, advert.BusinessID)
	if err != nil {
		return nil, err
	}

	if err := business.ConsumeAdvertSlot(); err != nil {
		return nil, err
	}

	if err := saveBusinessTx(ctx, tx, business); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO adverts (business_id, title, body, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	if err := tx.GetContext(ctx, advert, query,
		advert.BusinessID, advert.Title, advert.Body, advert.Status); err != nil {
		return nil, fmt.Errorf("failed to insert advert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit advert creation: %w", err)
	}

	return business, nil
}

// DeleteAdvertTx deletes the advert and restores one slot to its owner in a
// single transaction.
func (s *Store) DeleteAdvertTx(ctx context.Context, advertID int64) (*models.Advert, *models.Business, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var advert models.Advert
	err = tx.GetContext(ctx, &advert,
		"SELECT * FROM adverts WHERE id = $1 FOR UPDATE", advertID)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("%w: advert %d", models.ErrNotFound, advertID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock advert row: %w", err)
	}

	business, err := lockBusiness(ctx, tx, advert.BusinessID)
	if err != nil {
		return nil, nil, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM adverts WHERE id = $1", advertID); err != nil {
		return nil, nil, fmt.Errorf("failed to delete advert: %w", err)
	}

	business.ReleaseAdvertSlot()
	if err := saveBusinessTx(ctx, tx, business); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit advert deletion: %w", err)
	}

	return &advert, business, nil
}

// UpdateAdvert edits an advert. Edited adverts revert to pending so they go
// through moderation again.
func (s *Store) UpdateAdvert(ctx context.Context, advertID int64, title, body string) (*models.Advert, error) {
	var advert models.Advert
	err := s.db.GetContext(ctx, &advert, `
		UPDATE adverts
		SET title = $1, body = $2, status = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING *`,
		title, body, models.AdvertStatusPending, advertID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: advert %d", models.ErrNotFound, advertID)
	}
	if err != nil {
		return nil, err
	}
	return &advert, nil
}

// CountProductsByBusinessID counts a business's products
func (s *Store) CountProductsByBusinessID(ctx context.Context, businessID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM products WHERE business_id = $1", businessID)
	return count, err
}

// CreateProductTx inserts a product after the gate callback approves it.
// The business row is locked and the product count taken inside the same
// transaction so concurrent creations cannot slip past the tier's product
// limit.
func (s *Store) CreateProductTx(
	ctx context.Context,
	product *models.Product,
	gate func(business *models.Business, existingProducts int) error,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	business, err := lockBusiness(ctx, tx, product.BusinessID)
	if err != nil {
		return err
	}

	var count int
	if err := tx.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM products WHERE business_id = $1", product.BusinessID); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}

	if gate != nil {
		if err := gate(business, count); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO products (business_id, name, price, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	if err := tx.GetContext(ctx, product, query,
		product.BusinessID, product.Name, product.Price, product.Status); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product creation: %w", err)
	}

	return nil
}

// IsWebhookProcessed checks whether a processor notification was handled
func (s *Store) IsWebhookProcessed(ctx context.Context, reference string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_webhooks WHERE reference = $1)", reference)
	return exists, err
}
