package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session is a signed-in browser session and the backend token it holds
type Session struct {
	ID        string         `gorm:"primaryKey;size:36"`
	Token     string         `gorm:"not null"`
	UserID    uint           `gorm:"index"`
	Name      string         `gorm:"default:''"`
	Email     string         `gorm:"default:''"`
	Role      string         `gorm:"default:'student'"`
	Profile   datatypes.JSON `json:"profile"`
	ExpiresAt time.Time      `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
