package models

import "time"

// OfferStatus moves from Pending to Accepted or Rejected exactly once.
type OfferStatus string

const (
	OfferPending  OfferStatus = "Pending"
	OfferAccepted OfferStatus = "Accepted"
	OfferRejected OfferStatus = "Rejected"
)

// Offer is a buyer's price proposal for a product.
type Offer struct {
	ID           string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID    string      `json:"product_id" gorm:"type:varchar(36);index;not null"`
	BuyerID      string      `json:"buyer_id" gorm:"type:varchar(36);index;not null"`
	OfferedPrice float64     `json:"offered_price" gorm:"not null"`
	Message      string      `json:"message" gorm:"type:text"`
	Status       OfferStatus `json:"status" gorm:"type:varchar(20);index;not null"`
	CreatedAt    time.Time   `json:"created_at"`
	RespondedAt  *time.Time  `json:"responded_at"`
}
