package handlers

import (
	"mandale/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// RatingHandler handles seller ratings.
type RatingHandler struct {
	service  *services.RatingService
	validate *validator.Validate
}

func NewRatingHandler(service *services.RatingService, validate *validator.Validate) *RatingHandler {
	return &RatingHandler{
		service:  service,
		validate: validate,
	}
}

func (h *RatingHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	ratingRoutes := router.Group("/ratings")
	ratingRoutes.Post("/crear", authRequired, h.HandleRate)
	ratingRoutes.Get("/usuario/:id", h.HandleUserRatings)
}

func (h *RatingHandler) HandleRate(c *fiber.Ctx) error {
	var req services.RatingRequest
	if err := bindRequest(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	rating, err := h.service.Rate(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rating)
}

func (h *RatingHandler) HandleUserRatings(c *fiber.Ctx) error {
	ratings, err := h.service.UserRatings(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ratings)
}
