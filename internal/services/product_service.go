package services

import (
	"context"
	"fmt"

	"mandale/internal/errs"
	"mandale/internal/models"
	"mandale/internal/repositories"
)

// ProductInput is the owner-supplied part of a listing.
type ProductInput struct {
	Title        string                  `json:"title" validate:"required,max=200"`
	Description  string                  `json:"description"`
	Price        float64                 `json:"price" validate:"gte=0"`
	Category     string                  `json:"category" validate:"required,max=100"`
	Condition    models.ProductCondition `json:"condition" validate:"required,oneof=New Used Refurbished"`
	Stock        int                     `json:"stock" validate:"gte=0"`
	Images       []string                `json:"images"`
	FreeShipping bool                    `json:"free_shipping"`
	WeightKg     float64                 `json:"weight_kg" validate:"gte=0"`
	HeightCm     float64                 `json:"height_cm" validate:"gte=0"`
	WidthCm      float64                 `json:"width_cm" validate:"gte=0"`
	LengthCm     float64                 `json:"length_cm" validate:"gte=0"`
	// Status may pause or reactivate a listing on update; empty keeps it.
	Status models.ProductStatus `json:"status" validate:"omitempty,oneof=Active Paused Sold"`
}

func (in ProductInput) apply(p *models.Product) {
	p.Title = in.Title
	p.Description = in.Description
	p.Price = in.Price
	p.Category = in.Category
	p.Condition = in.Condition
	p.Stock = in.Stock
	p.Images = in.Images
	p.FreeShipping = in.FreeShipping
	p.WeightKg = in.WeightKg
	p.HeightCm = in.HeightCm
	p.WidthCm = in.WidthCm
	p.LengthCm = in.LengthCm
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// GetAllProducts retrieves the Active products matching filter.
func (s *ProductService) GetAllProducts(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, error) {
	filter.OwnerID = ""
	filter.AllStatuses = false
	return s.repo.GetAll(ctx, filter)
}

// MyProducts lists every non-deleted product of ownerID.
func (s *ProductService) MyProducts(ctx context.Context, ownerID string) ([]models.Product, error) {
	return s.repo.GetAll(ctx, repositories.ProductFilter{OwnerID: ownerID, AllStatuses: true})
}

// GetProductByID retrieves a product and counts the view.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.visibleProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to count view: %w", err)
	}
	product.Views++
	return product, nil
}

// visibleProduct hides soft-deleted products behind NotFound.
func (s *ProductService) visibleProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.IsDeleted() {
		return nil, errs.NotFound("product with ID %s not found", id)
	}
	return product, nil
}

// CreateProduct publishes a new Active listing owned by ownerID.
func (s *ProductService) CreateProduct(ctx context.Context, ownerID string, in ProductInput) (*models.Product, error) {
	product := &models.Product{
		OwnerID: ownerID,
		Status:  models.ProductActive,
	}
	in.apply(product)

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to publish product: %w", err)
	}

	publishEvent(s.publisher, EventProductPublished, map[string]interface{}{
		"productID": product.ID,
		"ownerID":   product.OwnerID,
		"price":     product.Price,
	})
	return product, nil
}

// UpdateProduct replaces the listing fields. Only the owner may edit.
func (s *ProductService) UpdateProduct(ctx context.Context, userID, id string, in ProductInput) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	in.apply(product)
	if in.Status != "" {
		product.Status = in.Status
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteProduct soft-deletes a product. The record is kept.
func (s *ProductService) DeleteProduct(ctx context.Context, userID, id string) error {
	product, err := s.ownedProduct(ctx, userID, id)
	if err != nil {
		return err
	}

	product.Status = models.ProductDeleted
	if err := s.repo.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *ProductService) ownedProduct(ctx context.Context, userID, id string) (*models.Product, error) {
	product, err := s.visibleProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.OwnerID != userID {
		return nil, errs.Forbidden("only the owner can modify this product")
	}
	return product, nil
}
