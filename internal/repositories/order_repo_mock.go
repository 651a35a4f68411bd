package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"mandale/internal/errs"
	"mandale/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Create adds a new order.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, errs.NotFound("order with ID %s not found", id)
	}
	return &order, nil
}

// ListByBuyer returns the orders placed by buyerID.
func (r *MockOrderRepository) ListByBuyer(_ context.Context, buyerID string) ([]models.Order, error) {
	return r.list(func(o models.Order) bool { return o.BuyerID == buyerID }), nil
}

// ListBySeller returns the orders received by sellerID.
func (r *MockOrderRepository) ListBySeller(_ context.Context, sellerID string) ([]models.Order, error) {
	return r.list(func(o models.Order) bool { return o.SellerID == sellerID }), nil
}

func (r *MockOrderRepository) list(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			orderList = append(orderList, o)
		}
	}
	sort.SliceStable(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	return orderList
}

// UpdateStatus changes the status of an order.
func (r *MockOrderRepository) UpdateStatus(_ context.Context, id string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return errs.NotFound("order with ID %s not found", id)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}
