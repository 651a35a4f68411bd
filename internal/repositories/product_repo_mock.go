package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mandale/internal/errs"
	"mandale/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns the products matching filter.
func (r *MockProductRepository) GetAll(_ context.Context, filter ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.AllStatuses {
			if p.Status == models.ProductDeleted {
				continue
			}
		} else if p.Status != models.ProductActive {
			continue
		}
		if filter.OwnerID != "" && p.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		productList = append(productList, p)
	}

	sort.SliceStable(productList, func(i, j int) bool {
		if filter.SortBy == "views" && productList[i].Views != productList[j].Views {
			return productList[i].Views > productList[j].Views
		}
		return productList[i].PublishedAt.After(productList[j].PublishedAt)
	})
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, errs.NotFound("product with ID %s not found", id)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	if product.PublishedAt.IsZero() {
		product.PublishedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product that is not deleted.
func (r *MockProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.products[product.ID]
	if !ok || current.IsDeleted() {
		return errs.NotFound("product with ID %s not found for update", product.ID)
	}
	product.Views = current.Views
	product.PublishedAt = current.PublishedAt
	product.OwnerID = current.OwnerID
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// IncrementViews adds one view.
func (r *MockProductRepository) IncrementViews(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return errs.NotFound("product with ID %s not found", id)
	}
	product.Views++
	r.products[id] = product
	return nil
}

// DecrementStock checks and takes stock under the write lock.
func (r *MockProductRepository) DecrementStock(_ context.Context, id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok || product.Status != models.ProductActive || product.Stock < quantity {
		return errs.Conflict("stock of product %s exhausted by a concurrent purchase", id)
	}
	product.Stock -= quantity
	if product.Stock == 0 {
		product.Status = models.ProductSold
	}
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return nil
}

// RestoreStock gives units back.
func (r *MockProductRepository) RestoreStock(_ context.Context, id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return errs.NotFound("product with ID %s not found", id)
	}
	product.Stock += quantity
	if product.Status == models.ProductSold && product.Stock > 0 {
		product.Status = models.ProductActive
	}
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return nil
}
