package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email            string    `gorm:"uniqueIndex;not null"`
	PasswordHash     string    `gorm:"not null"`
	IsActive         bool      `gorm:"not null;default:true"`
	IsSubscribed     bool      `gorm:"not null;default:false"`
	StripeCustomerID *string
	Avatar           *string // data:image/png;base64,...
	CreatedAt        time.Time

	// Связи
	Messages []Message `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate выставляет ID на стороне Go: у SQLite нет gen_random_uuid()
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
