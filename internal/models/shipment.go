package models

import "time"

const (
	ShipmentCreated = "Created"
)

// Shipment is attached to an order after checkout when a shipping option was
// chosen.
type Shipment struct {
	ID                 string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID            string          `json:"order_id" gorm:"type:varchar(36);index;not null"`
	CarrierCode        string          `json:"carrier_code" gorm:"type:varchar(50);not null"`
	Cost               float64         `json:"cost"`
	Currency           string          `json:"currency" gorm:"type:varchar(10)"`
	EstimatedDays      int             `json:"estimated_days"`
	Status             string          `json:"status" gorm:"type:varchar(20);not null"`
	TrackingNumber     string          `json:"tracking_number,omitempty" gorm:"type:varchar(200);index"`
	TrackingURL        string          `json:"tracking_url,omitempty"`
	LabelURL           string          `json:"label_url,omitempty"`
	ProviderShipmentID string          `json:"provider_shipment_id,omitempty" gorm:"type:varchar(200);index"`
	Tracking           []TrackingEvent `json:"tracking,omitempty" gorm:"foreignKey:ShipmentID"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TrackingEvent is one status report received from a carrier.
type TrackingEvent struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ShipmentID  string    `json:"shipment_id" gorm:"type:varchar(36);index;not null"`
	Status      string    `json:"status" gorm:"type:varchar(50);not null"`
	Description string    `json:"description,omitempty" gorm:"type:varchar(255)"`
	OccurredAt  time.Time `json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at"`
}
