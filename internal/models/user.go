package models

import "time"

type User struct {
	ID           string `gorm:"primaryKey;size:64" json:"id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	AvatarURL    string `gorm:"size:255" json:"avatar_url"`
	Role         string `gorm:"size:20;default:'client'" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserAccess is the payment status gate for a user.
type UserAccess struct {
	UserID     string     `gorm:"primaryKey;size:64" json:"user_id"`
	Status     string     `gorm:"size:20;default:'pending'" json:"status"`
	NotifiedAt *time.Time `json:"notified_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type UserPreference struct {
	UserID        string    `gorm:"primaryKey;size:64" json:"user_id"`
	DarkMode      bool      `json:"dark_mode"`
	Notifications bool      `gorm:"default:true" json:"notifications"`
	UpdatedAt     time.Time `json:"updated_at"`
}
