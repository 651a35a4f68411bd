package handlers

import (
	"strings"

	"mandale/internal/services"
	"mandale/pkg/wallet"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PaymentHandler exposes wallet management and the payment simulator.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
}

func NewPaymentHandler(service *services.PaymentService, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: validate,
	}
}

// RegisterRoutes registers the payment routes.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	paymentRoutes := router.Group("/payments")
	paymentRoutes.Get("/metodos-disponibles", h.HandleAvailableMethods)
	paymentRoutes.Post("/conectar-billetera", authRequired, h.HandleConnectWallet)
	paymentRoutes.Post("/desconectar-billetera", authRequired, h.HandleDisconnectWallet)
	paymentRoutes.Get("/mis-billeteras", authRequired, h.HandleListWallets)
	paymentRoutes.Post("/procesar-pago", authRequired, h.HandleProcessPayment)
}

type walletRequest struct {
	Type    string `json:"type" validate:"required"`
	Account string `json:"account" validate:"max=255"`
}

type paymentRequest struct {
	Type        string  `json:"type" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=500"`
}

func (h *PaymentHandler) HandleAvailableMethods(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"methods": h.service.AvailableMethods(),
	})
}

func (h *PaymentHandler) HandleConnectWallet(c *fiber.Ctx) error {
	var req walletRequest
	if err := bindRequest(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	wallets, err := h.service.ConnectWallet(c.UserContext(), currentUserID(c), req.Type, req.Account)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Wallet connected successfully",
		"wallets": wallets,
	})
}

func (h *PaymentHandler) HandleDisconnectWallet(c *fiber.Ctx) error {
	var req walletRequest
	if err := bindRequest(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	wallets, err := h.service.DisconnectWallet(c.UserContext(), currentUserID(c), req.Type)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Wallet disconnected successfully",
		"wallets": wallets,
	})
}

func (h *PaymentHandler) HandleListWallets(c *fiber.Ctx) error {
	wallets, err := h.service.ListWallets(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"wallets": wallets,
	})
}

// HandleProcessPayment charges the caller's connected wallet. Rejected
// payments answer 402.
func (h *PaymentHandler) HandleProcessPayment(c *fiber.Ctx) error {
	var req paymentRequest
	if err := bindRequest(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	kind := wallet.Kind(strings.ToLower(strings.TrimSpace(req.Type)))
	tx, err := h.service.ProcessPayment(c.UserContext(), currentUserID(c), kind, req.Amount, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Payment processed successfully",
		"transaction": tx,
	})
}
