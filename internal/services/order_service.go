package services

import (
	"context"
	"fmt"

	"mandale/internal/errs"
	"mandale/internal/models"
	"mandale/internal/repositories"
)

// OrderDetail is an order with its shipments.
type OrderDetail struct {
	models.Order
	Shipments []models.Shipment `json:"shipments"`
}

// OrderService handles reads and status changes of existing orders.
type OrderService struct {
	orderRepo    repositories.OrderRepository
	shipmentRepo repositories.ShipmentRepository
	publisher    EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, shipmentRepo repositories.ShipmentRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		shipmentRepo: shipmentRepo,
		publisher:    publisher,
	}
}

// MyPurchases lists the orders placed by buyerID.
func (s *OrderService) MyPurchases(ctx context.Context, buyerID string) ([]models.Order, error) {
	return s.orderRepo.ListByBuyer(ctx, buyerID)
}

// MySales lists the orders received by sellerID.
func (s *OrderService) MySales(ctx context.Context, sellerID string) ([]models.Order, error) {
	return s.orderRepo.ListBySeller(ctx, sellerID)
}

// GetOrder returns an order to its buyer or seller.
func (s *OrderService) GetOrder(ctx context.Context, userID, id string) (*OrderDetail, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if userID != order.BuyerID && userID != order.SellerID {
		return nil, errs.Forbidden("you are not part of this order")
	}

	shipments, err := s.shipmentRepo.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: *order, Shipments: shipments}, nil
}

// UpdateOrderStatus lets the seller move an order to another status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, sellerID, id string, status models.OrderStatus) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.SellerID != sellerID {
		return nil, errs.Forbidden("only the seller can update this order")
	}
	if !models.ValidOrderStatus(status) {
		return nil, errs.InvalidArgument("invalid order status: %s", status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	order.Status = status

	publishEvent(s.publisher, EventOrderStatus, map[string]interface{}{
		"orderID": order.ID,
		"buyerID": order.BuyerID,
		"status":  order.Status,
	})
	return order, nil
}
