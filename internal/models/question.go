package models

import "time"

// Question is a buyer's public question about a product. It can be answered
// once, by the product owner.
type Question struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID  string     `json:"product_id" gorm:"type:varchar(36);index;not null"`
	UserID     string     `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Text       string     `json:"question" gorm:"type:text;not null"`
	Answer     *string    `json:"answer" gorm:"type:text"`
	AnsweredBy *string    `json:"answered_by,omitempty" gorm:"type:varchar(36)"`
	AskedAt    time.Time  `json:"asked_at" gorm:"autoCreateTime"`
	AnsweredAt *time.Time `json:"answered_at"`
}

// Answered reports whether the owner already replied.
func (q *Question) Answered() bool {
	return q.Answer != nil
}
