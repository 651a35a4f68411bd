package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mandale/internal/errs"
	"mandale/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionRepository defines the interface for product questions.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	ListByProduct(ctx context.Context, productID string) ([]models.Question, error)
	// Answer stores the answer only if the question has none yet.
	Answer(ctx context.Context, id, answer, answeredBy string, at time.Time) error
}

// GORMQuestionRepository is a GORM implementation of QuestionRepository.
type GORMQuestionRepository struct {
	db *gorm.DB
}

// NewGORMQuestionRepository creates a new instance of GORMQuestionRepository.
func NewGORMQuestionRepository(db *gorm.DB) *GORMQuestionRepository {
	return &GORMQuestionRepository{db: db}
}

func (r *GORMQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	if question.ID == "" {
		question.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (r *GORMQuestionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("question with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get question by ID %s: %w", id, err)
	}
	return &question, nil
}

// ListByProduct returns the questions of a product, newest first.
func (r *GORMQuestionRepository) ListByProduct(ctx context.Context, productID string) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("asked_at desc").Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list questions of product %s: %w", productID, err)
	}
	return questions, nil
}

func (r *GORMQuestionRepository) Answer(ctx context.Context, id, answer, answeredBy string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ? AND answer IS NULL", id).
		Updates(map[string]interface{}{
			"answer":      answer,
			"answered_by": answeredBy,
			"answered_at": at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to answer question %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.Conflict("question %s has already been answered", id)
	}
	return nil
}
