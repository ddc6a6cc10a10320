package models

import (
	"time"

	"gorm.io/datatypes"
)

// Payment intent statuses tracked locally.
const (
	// PaymentStatusPending marks an intent created but not yet confirmed.
	PaymentStatusPending = "pending"
	// PaymentStatusSucceeded marks an intent the provider reports as paid.
	PaymentStatusSucceeded = "succeeded"
)

// PaymentIntent mirrors a provider payment intent used to buy one
// quota-free riddle generation.
type PaymentIntent struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Reference  string `gorm:"type:text;not null;uniqueIndex"` // Local reference handed to the client.
	ProviderID string `gorm:"type:text;not null;index"`       // Provider-side intent identifier.

	AmountCents int64  `gorm:"not null"`           // Charge amount in minor units.
	Currency    string `gorm:"type:text;not null"` // ISO currency code.

	Status     string     `gorm:"type:text;not null;index"` // Local status, see PaymentStatus constants.
	ConsumedAt *time.Time // Set once the paid generation has been redeemed.

	Metadata datatypes.JSON `gorm:"type:jsonb"` // Raw provider payload for audits.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TableName overrides the default table name.
func (PaymentIntent) TableName() string {
	return "payment_intents"
}

// Consumed reports whether the paid generation was already redeemed.
func (p *PaymentIntent) Consumed() bool {
	return p != nil && p.ConsumedAt != nil
}
