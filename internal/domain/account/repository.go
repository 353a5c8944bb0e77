package account

import (
	"context"

	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

type Repository interface {
	// -------- Users --------
	// CreateUser stores the user with its pending access row and default
	// preferences in one transaction.
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, name, phone string) (*models.User, error)
	SetAvatar(ctx context.Context, id, url string) error

	// -------- Access --------
	// GetAccess returns a pending row when none is stored.
	GetAccess(ctx context.Context, userID string) (*models.UserAccess, error)
	SaveAccess(ctx context.Context, a *models.UserAccess) error

	// -------- Preferences --------
	GetPreferences(ctx context.Context, userID string) (*models.UserPreference, error)
	SavePreferences(ctx context.Context, p *models.UserPreference) error
}

type Automations interface {
	ListAutomations(ctx context.Context) ([]models.Automation, error)
	SetAutomation(ctx context.Context, key string, active bool) (*models.Automation, error)
	IsActive(ctx context.Context, key string) (bool, error)
}
