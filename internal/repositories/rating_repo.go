package repositories

import (
	"context"
	"errors"
	"fmt"

	"mandale/internal/errs"
	"mandale/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RatingSummary aggregates the ratings received by a user.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// RatingRepository defines the interface for seller ratings.
type RatingRepository interface {
	// Create fails with a Conflict when the rater already rated the order.
	Create(ctx context.Context, rating *models.Rating) error
	ListByRated(ctx context.Context, ratedID string) ([]models.Rating, error)
	Summary(ctx context.Context, ratedID string) (RatingSummary, error)
}

// GORMRatingRepository is a GORM implementation of RatingRepository.
type GORMRatingRepository struct {
	db *gorm.DB
}

// NewGORMRatingRepository creates a new instance of GORMRatingRepository.
func NewGORMRatingRepository(db *gorm.DB) *GORMRatingRepository {
	return &GORMRatingRepository{db: db}
}

func (r *GORMRatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	if rating.ID == "" {
		rating.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(rating).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Conflict("order %s was already rated", rating.OrderID)
		}
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

func (r *GORMRatingRepository) ListByRated(ctx context.Context, ratedID string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.WithContext(ctx).Where("rated_id = ?", ratedID).Order("created_at desc").Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings of user %s: %w", ratedID, err)
	}
	return ratings, nil
}

func (r *GORMRatingRepository) Summary(ctx context.Context, ratedID string) (RatingSummary, error) {
	var summary RatingSummary
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("COALESCE(AVG(stars), 0) AS average, COUNT(*) AS count").
		Where("rated_id = ?", ratedID).
		Scan(&summary).Error
	if err != nil {
		return RatingSummary{}, fmt.Errorf("failed to summarize ratings of user %s: %w", ratedID, err)
	}
	return summary, nil
}
