package models

import (
	"time"

	"mandale/pkg/wallet"
)

// User represents a buyer or seller of the marketplace.
type User struct {
	ID         string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username   string          `json:"username" gorm:"uniqueIndex;type:varchar(150)"`
	Email      string          `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Name       string          `json:"name" gorm:"type:varchar(100)"`
	Phone      string          `json:"phone,omitempty" gorm:"type:varchar(20)"`
	Password   string          `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	StoreName  string          `json:"store_name,omitempty" gorm:"type:varchar(200)"`
	Street     string          `json:"street,omitempty" gorm:"type:varchar(200)"`
	City       string          `json:"city,omitempty" gorm:"type:varchar(100)"`
	Province   string          `json:"province,omitempty" gorm:"type:varchar(100)"`
	PostalCode string          `json:"postal_code,omitempty" gorm:"type:varchar(10)"`
	Wallets    []WalletAccount `json:"-" gorm:"foreignKey:UserID"`
	ProductIDs []string        `json:"product_ids,omitempty" gorm:"-"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// WalletAccount is the state of one wallet provider for a user.
type WalletAccount struct {
	ID        uint        `json:"-" gorm:"primaryKey"`
	UserID    string      `json:"-" gorm:"type:varchar(36);uniqueIndex:idx_wallet_user_provider;not null"`
	Provider  wallet.Kind `json:"provider" gorm:"type:varchar(20);uniqueIndex:idx_wallet_user_provider;not null"`
	Active    bool        `json:"active"`
	Account   string      `json:"account"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// WalletState is the public view of a wallet entry.
type WalletState struct {
	Active  bool   `json:"active"`
	Account string `json:"account"`
}

// WalletMap returns the state of every supported provider, inactive when the
// user never connected it.
func WalletMap(accounts []WalletAccount) map[wallet.Kind]WalletState {
	out := make(map[wallet.Kind]WalletState, len(wallet.Kinds()))
	for _, k := range wallet.Kinds() {
		out[k] = WalletState{}
	}
	for _, a := range accounts {
		if _, ok := out[a.Provider]; ok {
			out[a.Provider] = WalletState{Active: a.Active, Account: a.Account}
		}
	}
	return out
}
