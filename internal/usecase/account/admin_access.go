package account

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/audit"
	"github.com/BruksfildServices01/jacare-do-corte/internal/domain/access"
	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/account"
	"github.com/BruksfildServices01/jacare-do-corte/internal/dto"
	"github.com/BruksfildServices01/jacare-do-corte/internal/session"
)

// SetAccess is the owner approving, blocking or resetting a user.
type SetAccess struct {
	repo   domain.Repository
	events session.Publisher
	audit  audit.Recorder
	log    *zap.Logger
	now    func() time.Time
}

func NewSetAccess(
	repo domain.Repository,
	events session.Publisher,
	audit audit.Recorder,
	log *zap.Logger,
) *SetAccess {
	return &SetAccess{
		repo:   repo,
		events: events,
		audit:  audit,
		log:    log,
		now:    time.Now,
	}
}

func (uc *SetAccess) Execute(
	ctx context.Context,
	actorID string,
	userID string,
	rawStatus string,
) (*dto.AccessChange, error) {

	target, err := access.ParsePaymentStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 1. Usuário existe
	// --------------------------------------------------
	if _, err := uc.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	a, err := uc.repo.GetAccess(ctx, userID)
	if err != nil {
		return nil, err
	}
	current, err := access.ParsePaymentStatus(a.Status)
	if err != nil {
		current = access.PaymentPending
	}

	// --------------------------------------------------
	// 2. Máquina de estados
	// --------------------------------------------------
	next, err := access.Transition(access.SignIn(current), access.EventFor(target))
	if err != nil {
		return nil, err
	}

	now := uc.now()
	a.Status = string(access.StatusFor(next))
	a.UpdatedAt = now
	if err := uc.repo.SaveAccess(ctx, a); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3. Aviso para as sessões abertas
	// --------------------------------------------------
	if err := uc.events.Publish(ctx, session.Event{
		UserID: userID,
		Type:   session.EventAccessChanged,
		Status: a.Status,
		State:  string(next),
		At:     now,
	}); err != nil {
		uc.log.Warn("access event not published", zap.String("user_id", userID), zap.Error(err))
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   audit.Ptr(actorID),
		Action:   "access_" + a.Status,
		Entity:   "user_access",
		EntityID: audit.Ptr(userID),
		Metadata: map[string]any{"from": string(current), "to": a.Status},
	})

	return &dto.AccessChange{UserID: userID, Status: a.Status, State: string(next)}, nil
}
