package account

import (
	"strings"

	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

const (
	DemoUserID = "demo-user-123"
	DemoEmail  = "visitante@jacare.com"
	DemoName   = "Visitante"
)

// DemoUser is the fixed identity behind demo sessions. It has no row.
func DemoUser() models.User {
	return models.User{
		ID:    DemoUserID,
		Email: DemoEmail,
		Name:  DemoName,
		Role:  "demo",
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
