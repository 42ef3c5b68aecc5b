package service

import (
	"context"
	"errors"
	"fmt"

	"directory-service/internal/broker"
	"directory-service/internal/entitlement"
	"directory-service/internal/models"
	"directory-service/internal/store"
	"directory-service/internal/util"

	"go.uber.org/zap"
)

// AdvertService handles quota-consuming adverts and tier-gated products
type AdvertService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	table          entitlement.Table
	logger         *zap.Logger
}

// NewAdvertService creates a new advert service
func NewAdvertService(
	store *store.Store,
	eventPublisher *broker.EventPublisher,
	table entitlement.Table,
) *AdvertService {
	return &AdvertService{
		store:          store,
		eventPublisher: eventPublisher,
		table:          table,
		logger:         util.GetLogger(),
	}
}

// CreateAdvertRequest represents a request to create an advert
type CreateAdvertRequest struct {
	BusinessID int64  `json:"business_id" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Body       string `json:"body,omitempty"`
}

// CreateAdvert consumes one advert slot and creates the advert pending
// moderation. The slot decrement and the insert share a transaction.
func (as *AdvertService) CreateAdvert(ctx context.Context, req *CreateAdvertRequest) (*models.Advert, error) {
	ctx, span := util.StartSpan(ctx, "AdvertService.CreateAdvert")
	defer span.End()

	advert := &models.Advert{
		BusinessID: req.BusinessID,
		Title:      req.Title,
		Body:       req.Body,
		Status:     models.AdvertStatusPending,
	}

	business, err := as.store.CreateAdvertTx(ctx, advert)
	if err != nil {
		if errors.Is(err, models.ErrQuotaExceeded) {
			util.AdvertsRejectedTotal.WithLabelValues("quota_exceeded").Inc()
			as.logger.Info("Advert creation denied by quota",
				zap.Int64("business_id", req.BusinessID))
		}
		return nil, err
	}

	util.AdvertsCreatedTotal.Inc()
	as.logger.Info("Advert created",
		zap.Int64("advert_id", advert.ID),
		zap.Int64("business_id", business.ID),
		zap.Int("adverts_remaining", business.AdvertsRemaining))

	event := &models.AdvertCreatedEvent{
		BaseEvent:        newBaseEvent(models.EventTypeAdvertCreated),
		AdvertID:         advert.ID,
		BusinessID:       business.ID,
		AdvertsRemaining: business.AdvertsRemaining,
	}
	if err := as.eventPublisher.PublishAdvertCreated(ctx, event); err != nil {
		as.logger.Error("Failed to publish AdvertCreated event", zap.Error(err))
	}

	return advert, nil
}

// DeleteAdvert removes the advert and restores one slot to its owner
func (as *AdvertService) DeleteAdvert(ctx context.Context, advertID int64) error {
	ctx, span := util.StartSpan(ctx, "AdvertService.DeleteAdvert")
	defer span.End()

	advert, business, err := as.store.DeleteAdvertTx(ctx, advertID)
	if err != nil {
		return err
	}

	util.AdvertsDeletedTotal.Inc()
	as.logger.Info("Advert deleted",
		zap.Int64("advert_id", advert.ID),
		zap.Int64("business_id", business.ID),
		zap.Int("adverts_remaining", business.AdvertsRemaining))

	event := &models.AdvertDeletedEvent{
		BaseEvent:        newBaseEvent(models.EventTypeAdvertDeleted),
		AdvertID:         advert.ID,
		BusinessID:       business.ID,
		AdvertsRemaining: business.AdvertsRemaining,
	}
	if err := as.eventPublisher.PublishAdvertDeleted(ctx, event); err != nil {
		as.logger.Error("Failed to publish AdvertDeleted event", zap.Error(err))
	}

	return nil
}

// UpdateAdvertRequest represents an advert edit
type UpdateAdvertRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body,omitempty"`
}

// UpdateAdvert edits an advert; edited adverts revert to pending for
// re-moderation.
func (as *AdvertService) UpdateAdvert(ctx context.Context, advertID int64, req *UpdateAdvertRequest) (*models.Advert, error) {
	ctx, span := util.StartSpan(ctx, "AdvertService.UpdateAdvert")
	defer span.End()

	return as.store.UpdateAdvert(ctx, advertID, req.Title, req.Body)
}

// GetAdvert retrieves an advert by ID
func (as *AdvertService) GetAdvert(ctx context.Context, advertID int64) (*models.Advert, error) {
	return as.store.GetAdvertByID(ctx, advertID)
}

// CreateProductRequest represents a request to list a product
type CreateProductRequest struct {
	BusinessID int64  `json:"business_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Price      int64  `json:"price" binding:"required,min=1"`
}

// CreateProduct lists a product if the business's tier allows products and
// the tier's product limit is not exhausted. The gate runs inside the
// creation transaction so concurrent listings cannot slip past the limit.
func (as *AdvertService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "AdvertService.CreateProduct")
	defer span.End()

	product := &models.Product{
		BusinessID: req.BusinessID,
		Name:       req.Name,
		Price:      req.Price,
		Status:     models.ProductStatusActive,
	}

	gate := func(business *models.Business, existingProducts int) error {
		return as.checkProductGate(business, existingProducts)
	}

	if err := as.store.CreateProductTx(ctx, product, gate); err != nil {
		switch {
		case errors.Is(err, models.ErrFeatureNotAvailable):
			util.ProductsRejectedTotal.WithLabelValues("tier_gated").Inc()
		case errors.Is(err, models.ErrQuotaExceeded):
			util.ProductsRejectedTotal.WithLabelValues("limit_reached").Inc()
		}
		return nil, err
	}

	util.ProductsCreatedTotal.Inc()
	as.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.Int64("business_id", product.BusinessID))

	return product, nil
}

func (as *AdvertService) checkProductGate(business *models.Business, existingProducts int) error {
	limits, err := as.table.LimitsFor(business.Tier)
	if err != nil {
		return err
	}
	if !limits.CanListProducts {
		return fmt.Errorf("%w: products require silver or gold (business %d is %s)",
			models.ErrFeatureNotAvailable, business.ID, business.Tier)
	}
	if limits.ProductLimit != entitlement.ProductsUnlimited && existingProducts >= limits.ProductLimit {
		return fmt.Errorf("%w: business %d reached its product limit of %d",
			models.ErrQuotaExceeded, business.ID, limits.ProductLimit)
	}
	return nil
}
