package account

import (
	"context"

	"github.com/BruksfildServices01/jacare-do-corte/internal/audit"
	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/account"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

type Automations struct {
	repo  domain.Automations
	audit audit.Recorder
}

func NewAutomations(repo domain.Automations, audit audit.Recorder) *Automations {
	return &Automations{repo: repo, audit: audit}
}

func (uc *Automations) List(ctx context.Context) ([]models.Automation, error) {
	return uc.repo.ListAutomations(ctx)
}

func (uc *Automations) Toggle(ctx context.Context, actorID, key string, active bool) (*models.Automation, error) {
	a, err := uc.repo.SetAutomation(ctx, key, active)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   audit.Ptr(actorID),
		Action:   "automation_toggled",
		Entity:   "automation",
		EntityID: audit.Ptr(key),
		Metadata: map[string]any{"active": active},
	})
	return a, nil
}
