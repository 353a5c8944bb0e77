package models

import "time"

type Appointment struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	UserID string `gorm:"size:64;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID;references:ID;constraint:false" json:"user,omitempty"`

	ServiceID uint     `json:"service_id"`
	Service   *Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service,omitempty"`

	BarberID uint    `json:"barber_id"`
	Barber   *Barber `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"barber,omitempty"`

	StartTime time.Time `gorm:"index" json:"start_time"`

	Status string `gorm:"size:20;default:'scheduled';index" json:"status"`

	RemindedAt  *time.Time `json:"reminded_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
