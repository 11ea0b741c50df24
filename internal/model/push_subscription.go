package model

import "time"

// PushSubscription holds a browser push subscription of an operator who
// wants to be told when specific equipment becomes available again.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Assets []*Asset `gorm:"many2many:subscription_asset_mapping;"`
}
