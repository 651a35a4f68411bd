package repositories

import (
	"context"

	"mandale/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// UpdateProfile saves the contact, store and address fields.
	UpdateProfile(ctx context.Context, user *models.User) error
	// SaveWallet inserts or replaces the user's entry for account.Provider.
	SaveWallet(ctx context.Context, account *models.WalletAccount) error
	ListWallets(ctx context.Context, userID string) ([]models.WalletAccount, error)
}
