package models

import "time"

// Rating is the buyer's score for the seller of an order.
type Rating struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string    `json:"order_id" gorm:"type:varchar(36);uniqueIndex:idx_rating_rater_order;not null"`
	RaterID   string    `json:"rater_id" gorm:"type:varchar(36);uniqueIndex:idx_rating_rater_order;not null"`
	RatedID   string    `json:"rated_id" gorm:"type:varchar(36);index;not null"`
	Stars     int       `json:"stars" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}
