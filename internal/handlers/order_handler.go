package handlers

import (
	"mandale/internal/models"
	"mandale/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles checkout and order tracking.
type OrderHandler struct {
	checkout *services.CheckoutService
	orders   *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(checkout *services.CheckoutService, orders *services.OrderService, validate *validator.Validate) *OrderHandler {
	return &OrderHandler{
		checkout: checkout,
		orders:   orders,
		validate: validate,
	}
}

// RegisterRoutes registers the order routes. Every route requires a token.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	orderRoutes := router.Group("/orders", authRequired)
	orderRoutes.Post("/crear", h.HandleCreateOrder)
	orderRoutes.Post("/checkout", h.HandleCheckoutCart)
	orderRoutes.Get("/mis-compras", h.HandleMyPurchases)
	orderRoutes.Get("/mis-ventas", h.HandleMySales)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Patch("/:id/estado", h.HandleUpdateStatus)
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// HandleCreateOrder pays for a product and creates the order. A repeated
// Idempotency-Key header is rejected with 409.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.OrderRequest
	if err := bindRequest(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	req.IdempotencyKey = c.Get("Idempotency-Key")

	result, err := h.checkout.CreateOrder(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleCheckoutCart buys every line of the posted cart.
func (h *OrderHandler) HandleCheckoutCart(c *fiber.Ctx) error {
	var req services.CartCheckoutRequest
	if err := bindRequest(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.checkout.CheckoutCart(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if result.Succeeded == 0 {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(result)
}

func (h *OrderHandler) HandleMyPurchases(c *fiber.Ctx) error {
	orders, err := h.orders.MyPurchases(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) HandleMySales(c *fiber.Ctx) error {
	orders, err := h.orders.MySales(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.orders.GetOrder(c.UserContext(), currentUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleUpdateStatus lets the seller move an order through its lifecycle.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := bindRequest(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	order, err := h.orders.UpdateOrderStatus(c.UserContext(), currentUserID(c), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}
