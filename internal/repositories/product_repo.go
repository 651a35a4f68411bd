package repositories

import (
	"context"

	"mandale/internal/models"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	Category string
	Search   string // matched against title and description
	SortBy   string // "views" or "date" (default)
	OwnerID  string
	// AllStatuses lists every non-deleted product instead of Active ones only.
	AllStatuses bool
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update saves the owner-editable fields; deleted products cannot be updated.
	Update(ctx context.Context, product *models.Product) error
	IncrementViews(ctx context.Context, id string) error
	// DecrementStock removes quantity units from an Active product in one
	// conditional write, marking it Sold when stock reaches zero. It fails
	// with a Conflict when fewer than quantity units remain.
	DecrementStock(ctx context.Context, id string, quantity int) error
	// RestoreStock gives back units taken by DecrementStock.
	RestoreStock(ctx context.Context, id string, quantity int) error
}
