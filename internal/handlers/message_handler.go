package handlers

import (
	"mandale/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// MessageHandler handles direct messages between users.
type MessageHandler struct {
	service  *services.MessagingService
	validate *validator.Validate
}

func NewMessageHandler(service *services.MessagingService, validate *validator.Validate) *MessageHandler {
	return &MessageHandler{
		service:  service,
		validate: validate,
	}
}

// RegisterRoutes registers the message routes. Every route requires a token.
func (h *MessageHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	messageRoutes := router.Group("/messages", authRequired)
	messageRoutes.Post("/enviar", h.HandleSend)
	messageRoutes.Get("/mis-mensajes", h.HandleListMine)
	messageRoutes.Patch("/:id/leido", h.HandleMarkRead)
}

func (h *MessageHandler) HandleSend(c *fiber.Ctx) error {
	var req services.MessageRequest
	if err := bindRequest(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	message, err := h.service.Send(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

func (h *MessageHandler) HandleListMine(c *fiber.Ctx) error {
	messages, err := h.service.ListMine(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(messages)
}

func (h *MessageHandler) HandleMarkRead(c *fiber.Ctx) error {
	message, err := h.service.MarkRead(c.UserContext(), currentUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(message)
}
