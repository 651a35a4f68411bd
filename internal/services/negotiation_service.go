package services

import (
	"context"
	"strings"
	"time"

	"mandale/internal/errs"
	"mandale/internal/models"
	"mandale/internal/repositories"
)

// OfferAction is the owner's response to an offer.
type OfferAction string

const (
	OfferAccept OfferAction = "accept"
	OfferReject OfferAction = "reject"
)

// ParseOfferAction accepts the English and Spanish spellings.
func ParseOfferAction(s string) (OfferAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept", "aceptar":
		return OfferAccept, nil
	case "reject", "rechazar":
		return OfferReject, nil
	}
	return "", errs.InvalidArgument("invalid action %q, use \"accept\" or \"reject\"", s)
}

// NegotiationService handles questions and price offers on products.
type NegotiationService struct {
	productRepo  repositories.ProductRepository
	questionRepo repositories.QuestionRepository
	offerRepo    repositories.OfferRepository
	publisher    EventPublisher
	now          func() time.Time
}

// NewNegotiationService creates a new NegotiationService.
func NewNegotiationService(productRepo repositories.ProductRepository, questionRepo repositories.QuestionRepository, offerRepo repositories.OfferRepository, publisher EventPublisher) *NegotiationService {
	return &NegotiationService{
		productRepo:  productRepo,
		questionRepo: questionRepo,
		offerRepo:    offerRepo,
		publisher:    publisher,
		now:          time.Now,
	}
}

func (s *NegotiationService) liveProduct(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.IsDeleted() {
		return nil, errs.NotFound("product with ID %s not found", productID)
	}
	return product, nil
}

// AskQuestion creates an unanswered question from buyerID.
func (s *NegotiationService) AskQuestion(ctx context.Context, productID, buyerID, text string) (*models.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errs.InvalidArgument("question text is required")
	}
	if _, err := s.liveProduct(ctx, productID); err != nil {
		return nil, err
	}

	question := &models.Question{
		ProductID: productID,
		UserID:    buyerID,
		Text:      text,
		AskedAt:   s.now(),
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// AnswerQuestion stores the owner's single answer.
func (s *NegotiationService) AnswerQuestion(ctx context.Context, questionID, ownerID, text string) (*models.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errs.InvalidArgument("answer text is required")
	}

	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	product, err := s.liveProduct(ctx, question.ProductID)
	if err != nil {
		return nil, err
	}
	if product.OwnerID != ownerID {
		return nil, errs.Forbidden("only the seller can answer this question")
	}
	if question.Answered() {
		return nil, errs.Conflict("question %s has already been answered", questionID)
	}

	at := s.now()
	if err := s.questionRepo.Answer(ctx, questionID, text, ownerID, at); err != nil {
		return nil, err
	}
	question.Answer = &text
	question.AnsweredBy = &ownerID
	question.AnsweredAt = &at

	publishEvent(s.publisher, EventQuestionAnswered, map[string]interface{}{
		"questionID": question.ID,
		"productID":  question.ProductID,
		"askedBy":    question.UserID,
	})
	return question, nil
}

// ListQuestions returns the public questions of a product.
func (s *NegotiationService) ListQuestions(ctx context.Context, productID string) ([]models.Question, error) {
	if _, err := s.liveProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.questionRepo.ListByProduct(ctx, productID)
}

// MakeOffer creates a Pending offer below the current price.
func (s *NegotiationService) MakeOffer(ctx context.Context, productID, buyerID string, offeredPrice float64, message string) (*models.Offer, error) {
	product, err := s.liveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.OwnerID == buyerID {
		return nil, errs.InvalidArgument("you cannot make an offer on your own product")
	}
	if product.Status != models.ProductActive {
		return nil, errs.InvalidArgument("product %s is not accepting offers", productID)
	}
	if offeredPrice <= 0 || offeredPrice >= product.Price {
		return nil, errs.InvalidArgument("the offer must be greater than 0 and lower than the current price %.2f", product.Price)
	}

	offer := &models.Offer{
		ProductID:    productID,
		BuyerID:      buyerID,
		OfferedPrice: offeredPrice,
		Message:      strings.TrimSpace(message),
		Status:       models.OfferPending,
		CreatedAt:    s.now(),
	}
	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// ListOffers returns the offers of a product to its owner.
func (s *NegotiationService) ListOffers(ctx context.Context, productID, ownerID string) ([]models.Offer, error) {
	product, err := s.liveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.OwnerID != ownerID {
		return nil, errs.Forbidden("only the seller can see the offers")
	}
	return s.offerRepo.ListByProduct(ctx, productID)
}

// RespondOffer accepts or rejects a Pending offer. Accepting sets the
// product price to the offered price.
func (s *NegotiationService) RespondOffer(ctx context.Context, offerID, ownerID string, action OfferAction) (*models.Offer, error) {
	if action != OfferAccept && action != OfferReject {
		return nil, errs.InvalidArgument("invalid action %q", action)
	}

	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	product, err := s.liveProduct(ctx, offer.ProductID)
	if err != nil {
		return nil, err
	}
	if product.OwnerID != ownerID {
		return nil, errs.Forbidden("only the seller can respond to this offer")
	}
	if offer.Status != models.OfferPending {
		return nil, errs.Conflict("offer %s has already been answered", offerID)
	}

	at := s.now()
	event := EventOfferRejected
	if action == OfferAccept {
		if err := s.offerRepo.Accept(ctx, offer, at); err != nil {
			return nil, err
		}
		offer.Status = models.OfferAccepted
		event = EventOfferAccepted
	} else {
		if err := s.offerRepo.Reject(ctx, offerID, at); err != nil {
			return nil, err
		}
		offer.Status = models.OfferRejected
	}
	offer.RespondedAt = &at

	publishEvent(s.publisher, event, map[string]interface{}{
		"offerID":      offer.ID,
		"productID":    offer.ProductID,
		"buyerID":      offer.BuyerID,
		"offeredPrice": offer.OfferedPrice,
	})
	return offer, nil
}
