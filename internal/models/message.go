package models

import "time"

// Message is a direct message between two users, optionally about an order.
type Message struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     *string   `json:"order_id,omitempty" gorm:"type:varchar(36);index"`
	SenderID    string    `json:"sender_id" gorm:"type:varchar(36);index;not null"`
	RecipientID string    `json:"recipient_id" gorm:"type:varchar(36);index;not null"`
	Subject     string    `json:"subject,omitempty" gorm:"type:varchar(200)"`
	Body        string    `json:"message" gorm:"type:text;not null"`
	Read        bool      `json:"read" gorm:"not null;default:false"`
	SentAt      time.Time `json:"sent_at" gorm:"index"`
}
