package repositories

import (
	"context"
	"errors"
	"fmt"

	"mandale/internal/errs"
	"mandale/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	// ListByUser returns the messages sent or received by userID, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Message, error)
	MarkRead(ctx context.Context, id string) error
}

// GORMMessageRepository is a GORM implementation of MessageRepository.
type GORMMessageRepository struct {
	db *gorm.DB
}

func NewGORMMessageRepository(db *gorm.DB) *GORMMessageRepository {
	return &GORMMessageRepository{db: db}
}

func (r *GORMMessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *GORMMessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("message with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get message by ID %s: %w", id, err)
	}
	return &message, nil
}

func (r *GORMMessageRepository) ListByUser(ctx context.Context, userID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("sent_at desc").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages of user %s: %w", userID, err)
	}
	return messages, nil
}

// MarkRead is idempotent; a message that is already read is left as is.
func (r *GORMMessageRepository) MarkRead(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark message %s as read: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("message with ID %s not found", id)
	}
	return nil
}
