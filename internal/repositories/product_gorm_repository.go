package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mandale/internal/errs"
	"mandale/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var productEditableColumns = []string{
	"title", "description", "price", "category", "condition", "stock", "images",
	"free_shipping", "weight_kg", "height_cm", "width_cm", "length_cm", "status", "updated_at",
}

// likeEscaper makes a search term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves the products matching filter, newest first unless sorted by views.
func (r *GORMProductRepository) GetAll(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.AllStatuses {
		query = query.Where("status <> ?", models.ProductDeleted)
	} else {
		query = query.Where("status = ?", models.ProductActive)
	}
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if filter.SortBy == "views" {
		query = query.Order("views desc").Order("published_at desc")
	} else {
		query = query.Order("published_at desc")
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID, whatever its status.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("product with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes the editable columns of a product that is not deleted.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(product).
		Where("status <> ?", models.ProductDeleted).
		Select(productEditableColumns).
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("product with ID %s not found for update", product.ID)
	}
	return nil
}

// IncrementViews adds one view to the product counter.
func (r *GORMProductRepository) IncrementViews(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to increment views of product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("product with ID %s not found", id)
	}
	return nil
}

// DecrementStock takes quantity units in a single conditional UPDATE.
func (r *GORMProductRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND status = ? AND stock >= ?", id, models.ProductActive, quantity).
			Updates(map[string]interface{}{
				"stock":      gorm.Expr("stock - ?", quantity),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to decrement stock of product %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.Conflict("stock of product %s exhausted by a concurrent purchase", id)
		}

		err := tx.Model(&models.Product{}).
			Where("id = ? AND status = ? AND stock = 0", id, models.ProductActive).
			Update("status", models.ProductSold).Error
		if err != nil {
			return fmt.Errorf("failed to mark product %s as sold: %w", id, err)
		}
		return nil
	})
}

// RestoreStock returns quantity units and reactivates a product sold out by them.
func (r *GORMProductRepository) RestoreStock(ctx context.Context, id string, quantity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"stock":      gorm.Expr("stock + ?", quantity),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to restore stock of product %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("product with ID %s not found", id)
		}

		err := tx.Model(&models.Product{}).
			Where("id = ? AND status = ? AND stock > 0", id, models.ProductSold).
			Update("status", models.ProductActive).Error
		if err != nil {
			return fmt.Errorf("failed to reactivate product %s: %w", id, err)
		}
		return nil
	})
}
