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

// ShipmentRepository defines the interface for shipments and their tracking.
type ShipmentRepository interface {
	Create(ctx context.Context, shipment *models.Shipment) error
	GetByID(ctx context.Context, id string) (*models.Shipment, error)
	// FindByReference looks a shipment up by the carrier's shipment ID or,
	// failing that, by tracking number.
	FindByReference(ctx context.Context, providerShipmentID, trackingNumber string) (*models.Shipment, error)
	ListByOrder(ctx context.Context, orderID string) ([]models.Shipment, error)
	// RecordTracking saves the carrier-reported fields of shipment and appends
	// event to its history.
	RecordTracking(ctx context.Context, shipment *models.Shipment, event *models.TrackingEvent) error
}

// GORMShipmentRepository is a GORM implementation of ShipmentRepository.
type GORMShipmentRepository struct {
	db *gorm.DB
}

// NewGORMShipmentRepository creates a new instance of GORMShipmentRepository.
func NewGORMShipmentRepository(db *gorm.DB) *GORMShipmentRepository {
	return &GORMShipmentRepository{db: db}
}

func (r *GORMShipmentRepository) Create(ctx context.Context, shipment *models.Shipment) error {
	if shipment.ID == "" {
		shipment.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(shipment).Error; err != nil {
		return fmt.Errorf("failed to create shipment: %w", err)
	}
	return nil
}

func (r *GORMShipmentRepository) GetByID(ctx context.Context, id string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).
		Preload("Tracking", func(db *gorm.DB) *gorm.DB { return db.Order("occurred_at asc") }).
		First(&shipment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("shipment with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get shipment by ID %s: %w", id, err)
	}
	return &shipment, nil
}

func (r *GORMShipmentRepository) FindByReference(ctx context.Context, providerShipmentID, trackingNumber string) (*models.Shipment, error) {
	lookups := []struct{ column, value string }{
		{"provider_shipment_id", providerShipmentID},
		{"tracking_number", trackingNumber},
	}
	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		var shipment models.Shipment
		err := r.db.WithContext(ctx).First(&shipment, l.column+" = ?", l.value).Error
		if err == nil {
			return &shipment, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to find shipment by %s: %w", l.column, err)
		}
	}
	return nil, errs.NotFound("shipment not found for reference %q/%q", providerShipmentID, trackingNumber)
}

// ListByOrder returns the shipments of an order with their tracking history.
func (r *GORMShipmentRepository) ListByOrder(ctx context.Context, orderID string) ([]models.Shipment, error) {
	var shipments []models.Shipment
	err := r.db.WithContext(ctx).
		Preload("Tracking", func(db *gorm.DB) *gorm.DB { return db.Order("occurred_at asc") }).
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&shipments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments of order %s: %w", orderID, err)
	}
	return shipments, nil
}

func (r *GORMShipmentRepository) RecordTracking(ctx context.Context, shipment *models.Shipment, event *models.TrackingEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		shipment.UpdatedAt = time.Now()
		res := tx.Model(shipment).
			Select("status", "tracking_number", "tracking_url", "label_url", "updated_at").
			Updates(shipment)
		if res.Error != nil {
			return fmt.Errorf("failed to update shipment %s: %w", shipment.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("shipment with ID %s not found", shipment.ID)
		}

		event.ShipmentID = shipment.ID
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to store tracking event: %w", err)
		}
		return nil
	})
}
