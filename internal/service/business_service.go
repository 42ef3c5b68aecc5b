package service

import (
	"context"

	"directory-service/internal/broker"
	"directory-service/internal/entitlement"
	"directory-service/internal/models"
	"directory-service/internal/store"
	"directory-service/internal/util"

	"go.uber.org/zap"
)

// BusinessService handles registration, verification and feature gating
type BusinessService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	table          entitlement.Table
	logger         *zap.Logger
}

// NewBusinessService creates a new business service
func NewBusinessService(
	store *store.Store,
	eventPublisher *broker.EventPublisher,
	table entitlement.Table,
) *BusinessService {
	return &BusinessService{
		store:          store,
		eventPublisher: eventPublisher,
		table:          table,
		logger:         util.GetLogger(),
	}
}

// RegisterBusinessRequest represents a registration
type RegisterBusinessRequest struct {
	Name string `json:"name" binding:"required"`
}

// RegisterBusiness creates a business in its registration state: basic
// tier, pending verification, zero advert quota.
func (bs *BusinessService) RegisterBusiness(ctx context.Context, req *RegisterBusinessRequest) (*models.Business, error) {
	ctx, span := util.StartSpan(ctx, "BusinessService.RegisterBusiness")
	defer span.End()

	business := models.NewBusiness(req.Name)
	if err := bs.store.CreateBusiness(ctx, business); err != nil {
		return nil, err
	}

	bs.logger.Info("Business registered",
		zap.Int64("business_id", business.ID),
		zap.String("name", business.Name))

	return business, nil
}

// GetBusiness retrieves a business with its adverts
func (bs *BusinessService) GetBusiness(ctx context.Context, businessID int64) (*models.Business, []models.Advert, error) {
	business, err := bs.store.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, nil, err
	}

	adverts, err := bs.store.GetAdvertsByBusinessID(ctx, businessID)
	if err != nil {
		return nil, nil, err
	}

	return business, adverts, nil
}

// SetVerificationStatus applies the admin verification decision. Only
// verified and rejected are accepted; tier and quota are untouched. A
// BusinessVerified event is published for the notification pipeline (email
// sending is external to this service).
func (bs *BusinessService) SetVerificationStatus(ctx context.Context, businessID int64, status string) (*models.Business, error) {
	ctx, span := util.StartSpan(ctx, "BusinessService.SetVerificationStatus")
	defer span.End()

	status, err := models.ParseVerificationStatus(status)
	if err != nil {
		return nil, err
	}

	if err := bs.store.UpdateVerificationStatus(ctx, businessID, status); err != nil {
		return nil, err
	}

	business, err := bs.store.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	bs.logger.Info("Verification status updated",
		zap.Int64("business_id", businessID),
		zap.String("status", status))

	eventType := models.EventTypeBusinessVerified
	if status == models.VerificationRejected {
		eventType = models.EventTypeBusinessRejected
	}
	event := &models.BusinessVerifiedEvent{
		BaseEvent:  newBaseEvent(eventType),
		BusinessID: businessID,
		Status:     status,
	}
	if err := bs.eventPublisher.PublishBusinessVerified(ctx, event); err != nil {
		bs.logger.Error("Failed to publish BusinessVerified event", zap.Error(err))
	}

	return business, nil
}

// CheckFeatureAccess reports whether the business's tier unlocks a feature.
// Unknown feature names are rejected, never silently denied.
func (bs *BusinessService) CheckFeatureAccess(ctx context.Context, businessID int64, feature string) (bool, error) {
	business, err := bs.store.GetBusinessByID(ctx, businessID)
	if err != nil {
		return false, err
	}

	f, err := entitlement.ParseFeature(feature)
	if err != nil {
		return false, err
	}

	return bs.table.Allows(business.Tier, f)
}
