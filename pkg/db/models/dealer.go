package models

import (
	"time"

	"github.com/google/uuid"
)

// Dealer is a wholesale buyer account. Deactivating a dealer blocks future
// code redemptions but does not touch rows for codes already issued.
type Dealer struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name              string    `gorm:"column:name;not null" json:"name"`
	ContactName       string    `gorm:"column:contact_name" json:"contact_name"`
	ContactEmail      string    `gorm:"column:contact_email;not null;uniqueIndex" json:"contact_email"`
	ContactPhone      string    `gorm:"column:contact_phone" json:"contact_phone"`
	BillingAddress    string    `gorm:"column:billing_address" json:"billing_address"`
	TitleContactName  string    `gorm:"column:title_contact_name" json:"title_contact_name"`
	TitleContactEmail string    `gorm:"column:title_contact_email" json:"title_contact_email"`
	Active            bool      `gorm:"column:active;not null" json:"active"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
