package services

import (
	"context"
	"strings"
	"time"

	"mandale/internal/errs"
	"mandale/internal/models"
	"mandale/internal/repositories"
)

// MessageRequest is a direct message to another user. OrderID is optional;
// when set, the sender must be the order's buyer or seller.
type MessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	OrderID     string `json:"order_id"`
	Subject     string `json:"subject" validate:"max=200"`
	Message     string `json:"message" validate:"required,max=5000"`
}

// MessagingService handles messages between buyers and sellers.
type MessagingService struct {
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	orderRepo   repositories.OrderRepository
	publisher   EventPublisher
	now         func() time.Time
}

func NewMessagingService(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, orderRepo repositories.OrderRepository, publisher EventPublisher) *MessagingService {
	return &MessagingService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
		now:         time.Now,
	}
}

// Send stores a message from senderID.
func (s *MessagingService) Send(ctx context.Context, senderID string, req MessageRequest) (*models.Message, error) {
	body := strings.TrimSpace(req.Message)
	if body == "" {
		return nil, errs.InvalidArgument("message text is required")
	}
	if _, err := s.userRepo.GetByID(ctx, req.RecipientID); err != nil {
		return nil, err
	}

	message := &models.Message{
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Subject:     strings.TrimSpace(req.Subject),
		Body:        body,
		SentAt:      s.now(),
	}
	if req.OrderID != "" {
		order, err := s.orderRepo.GetByID(ctx, req.OrderID)
		if err != nil {
			return nil, err
		}
		if senderID != order.BuyerID && senderID != order.SellerID {
			return nil, errs.Forbidden("you are not allowed to send messages about this order")
		}
		message.OrderID = &order.ID
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	publishEvent(s.publisher, EventMessageSent, map[string]interface{}{
		"messageID":   message.ID,
		"senderID":    message.SenderID,
		"recipientID": message.RecipientID,
		"orderID":     message.OrderID,
	})
	return message, nil
}

// ListMine returns the messages userID sent or received.
func (s *MessagingService) ListMine(ctx context.Context, userID string) ([]models.Message, error) {
	return s.messageRepo.ListByUser(ctx, userID)
}

// MarkRead marks a message as read. Only its recipient may do so.
func (s *MessagingService) MarkRead(ctx context.Context, userID, id string) (*models.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if message.RecipientID != userID {
		return nil, errs.Forbidden("only the recipient can mark this message as read")
	}

	if err := s.messageRepo.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	message.Read = true
	return message, nil
}
