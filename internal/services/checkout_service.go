package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"mandale/internal/errs"
	"mandale/internal/models"
	"mandale/internal/repositories"
	"mandale/pkg/wallet"
)

// Payer charges a buyer's wallet. *PaymentService implements it.
type Payer interface {
	ProcessPayment(ctx context.Context, userID string, kind wallet.Kind, amount float64, description string) (*wallet.Transaction, error)
}

// Shipper attaches a shipment to an order. *ShippingService implements it.
type Shipper interface {
	CreateShipment(ctx context.Context, userID string, req ShipmentRequest) (*models.Shipment, error)
}

// KeyReserver remembers idempotency keys. The idempotency package stores
// implement it.
type KeyReserver interface {
	Reserve(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// ShippingChoice is a previously quoted shipping option.
type ShippingChoice struct {
	CarrierCode   string  `json:"carrier_code" validate:"required"`
	Cost          float64 `json:"cost" validate:"gte=0"`
	EstimatedDays int     `json:"estimated_days" validate:"gte=0"`
}

// OrderRequest is a single-product checkout.
type OrderRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	Quantity        int             `json:"quantity" validate:"required,gte=1"`
	PaymentMethod   string          `json:"payment_method" validate:"required"`
	DeliveryAddress string          `json:"delivery_address" validate:"max=500"`
	Shipping        *ShippingChoice `json:"shipping,omitempty" validate:"omitempty"`
	// IdempotencyKey comes from the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

// CheckoutResult is a created order and, when shipping was requested, the
// outcome of attaching the shipment.
type CheckoutResult struct {
	Order         *models.Order    `json:"order"`
	Shipment      *models.Shipment `json:"shipment,omitempty"`
	ShipmentError string           `json:"shipment_error,omitempty"`
}

// CartCheckoutRequest buys every line of a cart with one payment method.
type CartCheckoutRequest struct {
	Cart            models.Cart `json:"cart"`
	PaymentMethod   string      `json:"payment_method" validate:"required"`
	DeliveryAddress string      `json:"delivery_address" validate:"max=500"`
}

// CartLineResult is the outcome of one cart line.
type CartLineResult struct {
	ProductID string        `json:"product_id"`
	Quantity  int           `json:"quantity"`
	Order     *models.Order `json:"order,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// CartCheckoutResult reports each line; lines succeed or fail independently.
type CartCheckoutResult struct {
	Results   []CartLineResult `json:"results"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
}

// CheckoutService turns a purchase request into a paid order.
type CheckoutService struct {
	productRepo repositories.ProductRepository
	orderRepo   repositories.OrderRepository
	payer       Payer
	shipper     Shipper
	keys        KeyReserver
	publisher   EventPublisher
}

// NewCheckoutService creates a new CheckoutService. shipper, keys and
// publisher may be nil.
func NewCheckoutService(productRepo repositories.ProductRepository, orderRepo repositories.OrderRepository, payer Payer, shipper Shipper, keys KeyReserver, publisher EventPublisher) *CheckoutService {
	return &CheckoutService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		payer:       payer,
		shipper:     shipper,
		keys:        keys,
		publisher:   publisher,
	}
}

// CreateOrder validates the request, charges the buyer, takes the stock and
// records a Completed order. Nothing is mutated before the payment succeeds.
// A failed shipment is reported in the result and does not undo the order.
func (s *CheckoutService) CreateOrder(ctx context.Context, buyerID string, req OrderRequest) (*CheckoutResult, error) {
	kind, err := parseWalletKind(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.IsDeleted() {
		return nil, errs.NotFound("product with ID %s not found", req.ProductID)
	}
	if product.Status != models.ProductActive {
		return nil, errs.InvalidArgument("product %s is not available for purchase", product.ID)
	}
	if req.Quantity < 1 {
		return nil, errs.InvalidArgument("quantity must be at least 1")
	}
	if req.Quantity > product.Stock {
		return nil, errs.InvalidArgument("insufficient stock, available: %d", product.Stock)
	}
	if product.OwnerID == buyerID {
		return nil, errs.InvalidArgument("you cannot buy your own product")
	}

	var reservedKey string
	if req.IdempotencyKey != "" && s.keys != nil {
		key := "checkout:" + buyerID + ":" + req.IdempotencyKey
		free, err := s.keys.Reserve(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
		}
		if !free {
			return nil, errs.Conflict("a checkout with this idempotency key was already submitted")
		}
		reservedKey = key
	}

	unitPrice := product.Price
	total := unitPrice * float64(req.Quantity)
	tx, err := s.payer.ProcessPayment(ctx, buyerID, kind, total, fmt.Sprintf("%d x %s", req.Quantity, product.Title))
	if err != nil {
		// Nothing was charged, so the same key may be retried.
		if reservedKey != "" {
			if releaseErr := s.keys.Release(context.WithoutCancel(ctx), reservedKey); releaseErr != nil {
				log.Printf("Failed to release idempotency key of buyer %s: %v", buyerID, releaseErr)
			}
		}
		return nil, err
	}

	if err := s.productRepo.DecrementStock(ctx, product.ID, req.Quantity); err != nil {
		log.Printf("Stock for product %s taken after payment %s was approved; the charge must be refunded: %v", product.ID, tx.ID, err)
		return nil, err
	}

	order := &models.Order{
		ProductID:       product.ID,
		BuyerID:         buyerID,
		SellerID:        product.OwnerID,
		Quantity:        req.Quantity,
		UnitPrice:       unitPrice,
		TotalPrice:      total,
		PaymentMethod:   kind,
		DeliveryAddress: req.DeliveryAddress,
		Status:          models.OrderCompleted,
		TransactionID:   tx.ID,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		if restoreErr := s.productRepo.RestoreStock(context.WithoutCancel(ctx), product.ID, req.Quantity); restoreErr != nil {
			log.Printf("Failed to restore %d units of product %s: %v", req.Quantity, product.ID, restoreErr)
		}
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	publishEvent(s.publisher, EventOrderCreated, map[string]interface{}{
		"orderID":       order.ID,
		"productID":     order.ProductID,
		"buyerID":       order.BuyerID,
		"sellerID":      order.SellerID,
		"quantity":      order.Quantity,
		"total":         order.TotalPrice,
		"transactionID": order.TransactionID,
	})

	result := &CheckoutResult{Order: order}
	if req.Shipping != nil {
		s.attachShipment(ctx, buyerID, req.Shipping, result)
	}
	return result, nil
}

func (s *CheckoutService) attachShipment(ctx context.Context, buyerID string, choice *ShippingChoice, result *CheckoutResult) {
	if s.shipper == nil {
		result.ShipmentError = "shipping is not available"
		return
	}
	shipment, err := s.shipper.CreateShipment(ctx, buyerID, ShipmentRequest{
		OrderID:       result.Order.ID,
		CarrierCode:   choice.CarrierCode,
		Cost:          choice.Cost,
		EstimatedDays: choice.EstimatedDays,
	})
	if err != nil {
		log.Printf("Order %s created but its shipment failed: %v", result.Order.ID, err)
		result.ShipmentError = errs.Message(err)
		return
	}
	result.Shipment = shipment
}

// CheckoutCart places one independent order per cart line, in order.
// Partial success is expected and reported through the counts.
func (s *CheckoutService) CheckoutCart(ctx context.Context, buyerID string, req CartCheckoutRequest) (*CartCheckoutResult, error) {
	if req.Cart.Count() == 0 {
		return nil, errs.InvalidArgument("the cart is empty")
	}

	out := &CartCheckoutResult{Results: make([]CartLineResult, 0, len(req.Cart.Items))}
	for _, item := range req.Cart.Items {
		line := CartLineResult{ProductID: item.ProductID, Quantity: item.Quantity}

		res, err := s.CreateOrder(ctx, buyerID, OrderRequest{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PaymentMethod:   req.PaymentMethod,
			DeliveryAddress: req.DeliveryAddress,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			line.Error = errs.Message(err)
			out.Failed++
		} else {
			line.Order = res.Order
			out.Succeeded++
		}
		out.Results = append(out.Results, line)
	}
	return out, nil
}
