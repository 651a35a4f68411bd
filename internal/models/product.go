package models

import "time"

// ProductCondition is the physical condition of a listed item.
type ProductCondition string

const (
	ConditionNew         ProductCondition = "New"
	ConditionUsed        ProductCondition = "Used"
	ConditionRefurbished ProductCondition = "Refurbished"
)

// ProductStatus is the listing state. Deleted is terminal.
type ProductStatus string

const (
	ProductActive  ProductStatus = "Active"
	ProductPaused  ProductStatus = "Paused"
	ProductSold    ProductStatus = "Sold"
	ProductDeleted ProductStatus = "Deleted"
)

// Product represents a listing published by a seller.
type Product struct {
	ID           string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title        string           `json:"title" gorm:"type:varchar(200);not null"`
	Description  string           `json:"description" gorm:"type:text"`
	Price        float64          `json:"price" gorm:"not null"`
	Category     string           `json:"category" gorm:"type:varchar(100);index"`
	Condition    ProductCondition `json:"condition" gorm:"type:varchar(20);not null"`
	Stock        int              `json:"stock" gorm:"not null"`
	Images       []string         `json:"images" gorm:"serializer:json"`
	FreeShipping bool             `json:"free_shipping"`
	WeightKg     float64          `json:"weight_kg,omitempty"`
	HeightCm     float64          `json:"height_cm,omitempty"`
	WidthCm      float64          `json:"width_cm,omitempty"`
	LengthCm     float64          `json:"length_cm,omitempty"`
	OwnerID      string           `json:"owner_id" gorm:"type:varchar(36);index;not null"`
	Status       ProductStatus    `json:"status" gorm:"type:varchar(20);index;not null"`
	Views        int              `json:"views"`
	PublishedAt  time.Time        `json:"published_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// IsDeleted reports whether the product was soft-deleted by its owner.
func (p *Product) IsDeleted() bool {
	return p.Status == ProductDeleted
}
