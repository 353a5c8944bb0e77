package models

import "time"

// Automation is a toggle shown on the owner panel.
type Automation struct {
	Key         string    `gorm:"primaryKey;size:50" json:"key"`
	Title       string    `gorm:"size:100" json:"title"`
	Description string    `gorm:"size:255" json:"description"`
	Active      bool      `json:"active"`
	Position    int       `json:"position"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const AutomationEmailReminder = "email_reminder"

func DefaultAutomations() []Automation {
	return []Automation{
		{Key: AutomationEmailReminder, Title: "Lembrete via E-mail (1h antes)", Description: "Envia e-mail automático 1 hora antes do atendimento.", Active: true, Position: 0},
		{Key: "auto_confirm", Title: "Confirmação Automática", Description: "Confirma agendamentos pagos via PIX automaticamente. (Em breve)", Active: false, Position: 1},
		{Key: "review_request", Title: "Solicitação de Avaliação", Description: "Pede feedback ao cliente após o serviço. (Em breve)", Active: false, Position: 2},
	}
}
