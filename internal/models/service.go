package models

import "time"

type Service struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:100;not null" json:"name"`
	Price       float64 `json:"price"`
	DurationMin int     `json:"duration_minutes,omitempty"`
	Active      bool    `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Barber struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	AvatarURL string `gorm:"size:255" json:"avatar_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultServices is the shop menu used to seed empty tables and when the
// catalog cannot be read.
func DefaultServices() []Service {
	return []Service{
		{ID: 1, Name: "Corte de Cabelo", Price: 40, Active: true},
		{ID: 2, Name: "Barba", Price: 30, Active: true},
		{ID: 3, Name: "Corte + Barba", Price: 65, Active: true},
		{ID: 4, Name: "Pé + Mão Express", Price: 60, Active: true},
	}
}

func DefaultBarbers() []Barber {
	return []Barber{
		{ID: 1, Name: "Sr. Zeca", AvatarURL: "https://api.dicebear.com/7.x/avataaars/svg?seed=Zeca"},
		{ID: 2, Name: "Sr. Mora"},
		{ID: 3, Name: "Barber Pole", AvatarURL: "https://api.dicebear.com/7.x/avataaars/svg?seed=BarberPole"},
		{ID: 4, Name: "Dona Maria"},
	}
}
