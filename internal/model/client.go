package model

import "time"

// Client is an external entity owned by the client-management subsystem.
// The ledger only reads it: assignment records hold a weak reference
// (client ID plus a denormalized name snapshot) and legacy records may key
// on the display name alone.
type Client struct {
	ID          string `gorm:"primaryKey;size:64" json:"id"`
	Name        string `gorm:"size:256;not null" json:"name"`
	NIT         string `gorm:"column:nit;size:64" json:"nit,omitempty"`
	ContactName string `gorm:"size:256" json:"contactName,omitempty"`
	Email       string `gorm:"size:256" json:"email,omitempty"`
	Phone       string `gorm:"size:64" json:"phone,omitempty"`
	Address     string `gorm:"size:512" json:"address,omitempty"`
	Status      string `gorm:"size:32" json:"status,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
