package handlers

import (
	"mandale/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ShippingHandler handles quotes, shipment creation and carrier webhooks.
type ShippingHandler struct {
	service  *services.ShippingService
	validate *validator.Validate
}

func NewShippingHandler(service *services.ShippingService, validate *validator.Validate) *ShippingHandler {
	return &ShippingHandler{
		service:  service,
		validate: validate,
	}
}

// RegisterRoutes registers the shipping routes. The webhook authenticates
// with the X-Webhook-Secret header instead of a user token.
func (h *ShippingHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	shippingRoutes := router.Group("/shipping")
	shippingRoutes.Post("/quote", authRequired, h.HandleQuote)
	shippingRoutes.Post("/create", authRequired, h.HandleCreateShipment)
	shippingRoutes.Post("/webhook", h.HandleWebhook)
}

func (h *ShippingHandler) HandleQuote(c *fiber.Ctx) error {
	var req services.QuoteRequest
	if err := bindRequest(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	quote, err := h.service.Quote(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(quote)
}

func (h *ShippingHandler) HandleCreateShipment(c *fiber.Ctx) error {
	var req services.ShipmentRequest
	if err := bindRequest(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	shipment, err := h.service.CreateShipment(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(shipment)
}

func (h *ShippingHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload services.WebhookPayload
	if err := bindRequest(c, h.validate, &payload); err != nil {
		return respondError(c, err)
	}

	shipment, err := h.service.HandleWebhook(c.UserContext(), c.Get("X-Webhook-Secret"), payload)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":  "Tracking updated",
		"shipment": shipment,
	})
}
