package dto

import "time"

type SessionUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
	Role      string `json:"role"`
}

// AccessView is the gate state for the caller plus its stored status.
type AccessView struct {
	Status   string `json:"status"`
	State    string `json:"state"`
	Allow    bool   `json:"allow"`
	Redirect string `json:"redirect,omitempty"`
}

type SessionView struct {
	User   SessionUser `json:"user"`
	Access AccessView  `json:"access"`
	Demo   bool        `json:"demo"`
}

type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Session   SessionView `json:"session"`
}

type Preferences struct {
	DarkMode      bool `json:"dark_mode"`
	Notifications bool `json:"notifications"`
}

type PaymentInstructions struct {
	PixKey         string `json:"pix_key"`
	Price          string `json:"price"`
	WhatsAppNumber string `json:"whatsapp_number"`
	Status         string `json:"status"`
}

type PaymentNotice struct {
	Status      string `json:"status"`
	State       string `json:"state"`
	WhatsAppURL string `json:"whatsapp_url"`
	Message     string `json:"message"`
}

type AccessChange struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
	State  string `json:"state"`
}
