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
	"gorm.io/gorm/clause"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Conflict("user with email %s or username %s already exists", user.Email, user.Username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *GORMUserRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, column+" = ?", value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("user with %s %s not found", column, value)
		}
		return nil, fmt.Errorf("failed to get user by %s %s: %w", column, value, err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

// UpdateProfile writes the editable profile columns.
func (r *GORMUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(user).
		Select("name", "phone", "store_name", "street", "city", "province", "postal_code", "updated_at").
		Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("user with id %s not found", user.ID)
	}
	return nil
}

// SaveWallet upserts on (user_id, provider).
func (r *GORMUserRepository) SaveWallet(ctx context.Context, account *models.WalletAccount) error {
	account.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"active", "account", "updated_at"}),
	}).Create(account).Error
	if err != nil {
		return fmt.Errorf("failed to save %s wallet of user %s: %w", account.Provider, account.UserID, err)
	}
	return nil
}

// ListWallets returns every wallet entry stored for userID.
func (r *GORMUserRepository) ListWallets(ctx context.Context, userID string) ([]models.WalletAccount, error) {
	var accounts []models.WalletAccount
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("provider").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallets of user %s: %w", userID, err)
	}
	return accounts, nil
}
