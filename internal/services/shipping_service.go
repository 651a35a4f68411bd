package services

import (
	"context"
	"crypto/subtle"
	"math"
	"strings"
	"time"

	"mandale/internal/errs"
	"mandale/internal/models"
	"mandale/internal/repositories"

	"github.com/google/uuid"
)

// Carrier is a shipping provider of the catalog.
type Carrier struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// DefaultCarriers is the built-in carrier catalog.
var DefaultCarriers = []Carrier{
	{Code: "envio_pack", Name: "EnvioPack", Active: true},
	{Code: "moova", Name: "Moova", Active: true},
	{Code: "andreani", Name: "Andreani", Active: false},
	{Code: "oca", Name: "OCA", Active: false},
}

const shippingCurrency = "ARS"

// QuoteRequest asks for shipping options for a product. Dimensions default
// to the product's own.
type QuoteRequest struct {
	ProductID             string  `json:"product_id" validate:"required"`
	Quantity              int     `json:"quantity" validate:"omitempty,gte=1"`
	WeightKg              float64 `json:"weight_kg" validate:"gte=0"`
	HeightCm              float64 `json:"height_cm" validate:"gte=0"`
	WidthCm               float64 `json:"width_cm" validate:"gte=0"`
	LengthCm              float64 `json:"length_cm" validate:"gte=0"`
	OriginPostalCode      string  `json:"origin_postal_code"`
	DestinationPostalCode string  `json:"destination_postal_code"`
}

// QuoteOption is one carrier's offer.
type QuoteOption struct {
	CarrierCode   string  `json:"carrier_code"`
	CarrierName   string  `json:"carrier_name"`
	Cost          float64 `json:"cost"`
	Currency      string  `json:"currency"`
	EstimatedDays int     `json:"estimated_days"`
}

// Quote lists the options of every active carrier.
type Quote struct {
	ProductID             string        `json:"product_id"`
	Quantity              int           `json:"quantity"`
	OriginPostalCode      string        `json:"origin_postal_code,omitempty"`
	DestinationPostalCode string        `json:"destination_postal_code,omitempty"`
	Options               []QuoteOption `json:"options"`
}

// ShipmentRequest attaches a quoted option to an order.
type ShipmentRequest struct {
	OrderID       string  `json:"order_id" validate:"required"`
	CarrierCode   string  `json:"carrier_code" validate:"required"`
	Cost          float64 `json:"cost" validate:"gte=0"`
	EstimatedDays int     `json:"estimated_days" validate:"gte=0"`
}

// WebhookPayload is a carrier status report.
type WebhookPayload struct {
	ProviderShipmentID string `json:"provider_shipment_id"`
	TrackingNumber     string `json:"tracking_number"`
	Status             string `json:"status"`
	Description        string `json:"description"`
	TrackingURL        string `json:"tracking_url"`
	LabelURL           string `json:"label_url"`
	OccurredAt         string `json:"occurred_at"`
}

// ShippingService quotes shipping and tracks shipments.
type ShippingService struct {
	productRepo   repositories.ProductRepository
	orderRepo     repositories.OrderRepository
	shipmentRepo  repositories.ShipmentRepository
	publisher     EventPublisher
	carriers      []Carrier
	webhookSecret string
}

// NewShippingService creates a new ShippingService. An empty webhookSecret
// disables the webhook check.
func NewShippingService(productRepo repositories.ProductRepository, orderRepo repositories.OrderRepository, shipmentRepo repositories.ShipmentRepository, publisher EventPublisher, webhookSecret string) *ShippingService {
	return &ShippingService{
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		shipmentRepo:  shipmentRepo,
		publisher:     publisher,
		carriers:      DefaultCarriers,
		webhookSecret: webhookSecret,
	}
}

func (s *ShippingService) activeCarrier(code string) (Carrier, bool) {
	for _, c := range s.carriers {
		if c.Code == code && c.Active {
			return c, true
		}
	}
	return Carrier{}, false
}

// Quote prices shipping quantity units of an Active product.
func (s *ShippingService) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Status != models.ProductActive {
		return nil, errs.NotFound("product with ID %s not found", req.ProductID)
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}
	weight := req.WeightKg
	if weight == 0 {
		weight = product.WeightKg
	}
	if weight <= 0 {
		return nil, errs.InvalidArgument("the product weight is required to quote shipping")
	}

	quote := &Quote{
		ProductID:             product.ID,
		Quantity:              quantity,
		OriginPostalCode:      req.OriginPostalCode,
		DestinationPostalCode: req.DestinationPostalCode,
		Options:               []QuoteOption{},
	}
	idx := 0
	for _, c := range s.carriers {
		if !c.Active {
			continue
		}
		idx++
		cost := 1200 + weight*float64(quantity)*350 + float64(idx)*250
		quote.Options = append(quote.Options, QuoteOption{
			CarrierCode:   c.Code,
			CarrierName:   c.Name,
			Cost:          math.Round(cost*100) / 100,
			Currency:      shippingCurrency,
			EstimatedDays: 2 + idx,
		})
	}
	return quote, nil
}

// CreateShipment attaches a shipment to an order. Only its buyer or seller
// may do so, and only with an active carrier.
func (s *ShippingService) CreateShipment(ctx context.Context, userID string, req ShipmentRequest) (*models.Shipment, error) {
	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if userID != order.BuyerID && userID != order.SellerID {
		return nil, errs.Forbidden("only the buyer or the seller can ship this order")
	}
	carrier, ok := s.activeCarrier(req.CarrierCode)
	if !ok {
		return nil, errs.InvalidArgument("invalid carrier %q", req.CarrierCode)
	}

	// The simulated carrier answers with its own shipment id and a tracking
	// number; webhooks may refer to either.
	shipment := &models.Shipment{
		OrderID:            order.ID,
		CarrierCode:        carrier.Code,
		Cost:               req.Cost,
		Currency:           shippingCurrency,
		EstimatedDays:      req.EstimatedDays,
		Status:             models.ShipmentCreated,
		TrackingNumber:     strings.ToUpper(carrier.Code) + "-" + uuid.New().String()[:8],
		ProviderShipmentID: carrier.Code + "_" + uuid.New().String(),
	}
	if err := s.shipmentRepo.Create(ctx, shipment); err != nil {
		return nil, err
	}

	publishEvent(s.publisher, EventShipmentCreated, map[string]interface{}{
		"shipmentID":     shipment.ID,
		"orderID":        shipment.OrderID,
		"carrier":        shipment.CarrierCode,
		"trackingNumber": shipment.TrackingNumber,
	})
	return shipment, nil
}

// HandleWebhook applies a carrier status report to the matching shipment.
func (s *ShippingService) HandleWebhook(ctx context.Context, secret string, payload WebhookPayload) (*models.Shipment, error) {
	if s.webhookSecret != "" && subtle.ConstantTimeCompare([]byte(secret), []byte(s.webhookSecret)) != 1 {
		return nil, errs.Forbidden("webhook not authorized")
	}
	if payload.ProviderShipmentID == "" && payload.TrackingNumber == "" {
		return nil, errs.InvalidArgument("provider_shipment_id or tracking_number is required")
	}

	shipment, err := s.shipmentRepo.FindByReference(ctx, payload.ProviderShipmentID, payload.TrackingNumber)
	if err != nil {
		return nil, err
	}

	if payload.Status != "" {
		shipment.Status = payload.Status
	}
	if payload.TrackingURL != "" {
		shipment.TrackingURL = payload.TrackingURL
	}
	if payload.LabelURL != "" {
		shipment.LabelURL = payload.LabelURL
	}
	if payload.TrackingNumber != "" {
		shipment.TrackingNumber = payload.TrackingNumber
	}

	occurredAt := time.Now()
	if payload.OccurredAt != "" {
		if t, err := time.Parse(time.RFC3339, payload.OccurredAt); err == nil {
			occurredAt = t
		}
	}
	eventStatus := payload.Status
	if eventStatus == "" {
		eventStatus = "Updated"
	}
	event := &models.TrackingEvent{
		Status:      eventStatus,
		Description: payload.Description,
		OccurredAt:  occurredAt,
	}
	if err := s.shipmentRepo.RecordTracking(ctx, shipment, event); err != nil {
		return nil, err
	}
	shipment.Tracking = append(shipment.Tracking, *event)

	publishEvent(s.publisher, EventShipmentUpdated, map[string]interface{}{
		"shipmentID": shipment.ID,
		"orderID":    shipment.OrderID,
		"status":     shipment.Status,
	})
	return shipment, nil
}
