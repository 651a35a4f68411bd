package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mandale/internal/errs"
	"mandale/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OfferRepository defines the interface for price offers.
type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id string) (*models.Offer, error)
	ListByProduct(ctx context.Context, productID string) ([]models.Offer, error)
	// Accept moves a Pending offer to Accepted and sets the product price to
	// the offered price, both or neither. A non-Pending offer is a Conflict.
	Accept(ctx context.Context, offer *models.Offer, at time.Time) error
	// Reject moves a Pending offer to Rejected.
	Reject(ctx context.Context, id string, at time.Time) error
}

// GORMOfferRepository is a GORM implementation of OfferRepository.
type GORMOfferRepository struct {
	db *gorm.DB
}

// NewGORMOfferRepository creates a new instance of GORMOfferRepository.
func NewGORMOfferRepository(db *gorm.DB) *GORMOfferRepository {
	return &GORMOfferRepository{db: db}
}

func (r *GORMOfferRepository) Create(ctx context.Context, offer *models.Offer) error {
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func (r *GORMOfferRepository) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("offer with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get offer by ID %s: %w", id, err)
	}
	return &offer, nil
}

// ListByProduct returns the offers of a product, newest first.
func (r *GORMOfferRepository) ListByProduct(ctx context.Context, productID string) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at desc").Find(&offers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list offers of product %s: %w", productID, err)
	}
	return offers, nil
}

func (r *GORMOfferRepository) Accept(ctx context.Context, offer *models.Offer, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := respond(tx, offer.ID, models.OfferAccepted, at); err != nil {
			return err
		}

		res := tx.Model(&models.Product{}).
			Where("id = ? AND status <> ?", offer.ProductID, models.ProductDeleted).
			Updates(map[string]interface{}{"price": offer.OfferedPrice, "updated_at": at})
		if res.Error != nil {
			return fmt.Errorf("failed to apply offer %s to product %s: %w", offer.ID, offer.ProductID, res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("product with ID %s not found", offer.ProductID)
		}
		return nil
	})
}

func (r *GORMOfferRepository) Reject(ctx context.Context, id string, at time.Time) error {
	return respond(r.db.WithContext(ctx), id, models.OfferRejected, at)
}

// respond compares-and-sets the offer status away from Pending.
func respond(db *gorm.DB, id string, status models.OfferStatus, at time.Time) error {
	res := db.Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, models.OfferPending).
		Updates(map[string]interface{}{"status": status, "responded_at": at})
	if res.Error != nil {
		return fmt.Errorf("failed to respond to offer %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Conflict("offer %s has already been answered", id)
	}
	return nil
}
