package handlers

import (
	"mandale/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// NegotiationHandler exposes product questions and price offers.
type NegotiationHandler struct {
	service  *services.NegotiationService
	validate *validator.Validate
}

func NewNegotiationHandler(service *services.NegotiationService, validate *validator.Validate) *NegotiationHandler {
	return &NegotiationHandler{
		service:  service,
		validate: validate,
	}
}

// RegisterRoutes registers the question and offer routes.
func (h *NegotiationHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	questionRoutes := router.Group("/questions")
	questionRoutes.Post("/crear", authRequired, h.HandleAskQuestion)
	questionRoutes.Get("/producto/:id", h.HandleListQuestions)
	questionRoutes.Post("/:id/responder", authRequired, h.HandleAnswerQuestion)

	offerRoutes := router.Group("/offers", authRequired)
	offerRoutes.Post("/crear", h.HandleMakeOffer)
	offerRoutes.Get("/producto/:id", h.HandleListOffers)
	offerRoutes.Post("/:id/responder", h.HandleRespondOffer)
}

type askQuestionRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Question  string `json:"question" validate:"required,max=1000"`
}

type answerQuestionRequest struct {
	Answer string `json:"answer" validate:"required,max=1000"`
}

type makeOfferRequest struct {
	ProductID    string  `json:"product_id" validate:"required"`
	OfferedPrice float64 `json:"offered_price" validate:"required,gt=0"`
	Message      string  `json:"message" validate:"max=1000"`
}

type respondOfferRequest struct {
	Action string `json:"action" validate:"required"`
}

func (h *NegotiationHandler) HandleAskQuestion(c *fiber.Ctx) error {
	var req askQuestionRequest
	if err := bindRequest(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	question, err := h.service.AskQuestion(c.UserContext(), req.ProductID, currentUserID(c), req.Question)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

// HandleListQuestions is public so buyers can read answers before logging in.
func (h *NegotiationHandler) HandleListQuestions(c *fiber.Ctx) error {
	questions, err := h.service.ListQuestions(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(questions)
}

func (h *NegotiationHandler) HandleAnswerQuestion(c *fiber.Ctx) error {
	var req answerQuestionRequest
	if err := bindRequest(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	question, err := h.service.AnswerQuestion(c.UserContext(), c.Params("id"), currentUserID(c), req.Answer)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(question)
}

func (h *NegotiationHandler) HandleMakeOffer(c *fiber.Ctx) error {
	var req makeOfferRequest
	if err := bindRequest(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}

	offer, err := h.service.MakeOffer(c.UserContext(), req.ProductID, currentUserID(c), req.OfferedPrice, req.Message)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(offer)
}

// HandleListOffers lists the offers on a product; only its owner may see them.
func (h *NegotiationHandler) HandleListOffers(c *fiber.Ctx) error {
	offers, err := h.service.ListOffers(c.UserContext(), c.Params("id"), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(offers)
}

func (h *NegotiationHandler) HandleRespondOffer(c *fiber.Ctx) error {
	var req respondOfferRequest
	if err := bindRequest(c, h.validate, &req); err != nil {
		return respondError(c, err)
	}
	action, err := services.ParseOfferAction(req.Action)
	if err != nil {
		return respondError(c, err)
	}

	offer, err := h.service.RespondOffer(c.UserContext(), c.Params("id"), currentUserID(c), action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(offer)
}
