package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"directory-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// CreateBusiness inserts a business in its registration state
func (s *Store) CreateBusiness(ctx context.Context, business *models.Business) error {
	query := `
		INSERT INTO businesses (name, tier, verification_status, adverts_remaining, subscription_reference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, business, query,
		business.Name, business.Tier, business.VerificationStatus,
		business.AdvertsRemaining, business.SubscriptionReference)
}

// GetBusinessByID retrieves a business by ID
func (s *Store) GetBusinessByID(ctx context.Context, id int64) (*models.Business, error) {
	var business models.Business
	err := s.db.GetContext(ctx, &business, "SELECT * FROM businesses WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: business %d", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &business, nil
}

// UpdateVerificationStatus sets a business's verification status
func (s *Store) UpdateVerificationStatus(ctx context.Context, businessID int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE businesses SET verification_status = $1, updated_at = NOW() WHERE id = $2",
		status, businessID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: business %d", models.ErrNotFound, businessID)
	}
	return nil
}

// lockBusiness loads a business row under an exclusive row lock. Every
// quota-affecting operation goes through this so two transactions can never
// both observe the same adverts_remaining and both succeed.
func lockBusiness(ctx context.Context, tx *sqlx.Tx, businessID int64) (*models.Business, error) {
	var business models.Business
	err := tx.GetContext(ctx, &business,
		"SELECT * FROM businesses WHERE id = $1 FOR UPDATE", businessID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: business %d", models.ErrNotFound, businessID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock business row: %w", err)
	}
	return &business, nil
}

// saveBusinessTx writes the mutable business fields back inside a transaction
func saveBusinessTx(ctx context.Context, tx *sqlx.Tx, business *models.Business) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE businesses
		SET tier = $1, adverts_remaining = $2, subscription_reference = $3, updated_at = NOW()
		WHERE id = $4`,
		business.Tier, business.AdvertsRemaining, business.SubscriptionReference, business.ID)
	if err != nil {
		return fmt.Errorf("failed to update business: %w", err)
	}
	return nil
}
