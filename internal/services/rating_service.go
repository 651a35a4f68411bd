package services

import (
	"context"
	"strings"

	"mandale/internal/errs"
	"mandale/internal/models"
	"mandale/internal/repositories"
)

// RatingRequest scores the seller of an order.
type RatingRequest struct {
	OrderID string `json:"order_id" validate:"required"`
	Stars   int    `json:"stars" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// UserRatings is the public reputation of a user.
type UserRatings struct {
	Ratings []models.Rating `json:"ratings"`
	Average float64         `json:"average"`
	Total   int64           `json:"total"`
}

// RatingService lets buyers rate the sellers they bought from.
type RatingService struct {
	ratingRepo repositories.RatingRepository
	orderRepo  repositories.OrderRepository
	userRepo   repositories.UserRepository
}

// NewRatingService creates a new RatingService.
func NewRatingService(ratingRepo repositories.RatingRepository, orderRepo repositories.OrderRepository, userRepo repositories.UserRepository) *RatingService {
	return &RatingService{
		ratingRepo: ratingRepo,
		orderRepo:  orderRepo,
		userRepo:   userRepo,
	}
}

// Rate records the buyer's single rating of an order's seller.
func (s *RatingService) Rate(ctx context.Context, raterID string, req RatingRequest) (*models.Rating, error) {
	if req.Stars < 1 || req.Stars > 5 {
		return nil, errs.InvalidArgument("stars must be between 1 and 5")
	}

	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != raterID {
		return nil, errs.Forbidden("only the buyer can rate this order")
	}

	rating := &models.Rating{
		OrderID: order.ID,
		RaterID: raterID,
		RatedID: order.SellerID,
		Stars:   req.Stars,
		Comment: strings.TrimSpace(req.Comment),
	}
	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		return nil, err
	}
	return rating, nil
}

// UserRatings lists the ratings received by userID with their average.
func (s *RatingService) UserRatings(ctx context.Context, userID string) (*UserRatings, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	ratings, err := s.ratingRepo.ListByRated(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary, err := s.ratingRepo.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserRatings{Ratings: ratings, Average: summary.Average, Total: summary.Count}, nil
}
