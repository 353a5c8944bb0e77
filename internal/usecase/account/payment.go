package account

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/audit"
	"github.com/BruksfildServices01/jacare-do-corte/internal/domain/access"
	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/account"
	"github.com/BruksfildServices01/jacare-do-corte/internal/dto"
	"github.com/BruksfildServices01/jacare-do-corte/internal/session"
)

type PaymentSettings struct {
	PixKey         string
	Price          string
	WhatsAppNumber string
}

// Payment only gives instructions; the owner confirms PIX transfers by
// hand through SetAccess.
type Payment struct {
	repo     domain.Repository
	events   session.Publisher
	audit    audit.Recorder
	log      *zap.Logger
	settings PaymentSettings
	now      func() time.Time
}

func NewPayment(
	repo domain.Repository,
	events session.Publisher,
	audit audit.Recorder,
	log *zap.Logger,
	settings PaymentSettings,
) *Payment {
	return &Payment{
		repo:     repo,
		events:   events,
		audit:    audit,
		log:      log,
		settings: settings,
		now:      time.Now,
	}
}

func (uc *Payment) Instructions(ctx context.Context, c Caller) (*dto.PaymentInstructions, error) {
	status, err := statusOf(ctx, uc.repo, c)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentInstructions{
		PixKey:         uc.settings.PixKey,
		Price:          uc.settings.Price,
		WhatsAppNumber: uc.settings.WhatsAppNumber,
		Status:         string(status),
	}, nil
}

// Notify records that the caller says they paid and builds the WhatsApp
// link that tells the owner.
func (uc *Payment) Notify(ctx context.Context, c Caller) (*dto.PaymentNotice, error) {
	msg := NotifyMessage(uc.settings.Price, c.Email)
	link := WhatsAppLink(uc.settings.WhatsAppNumber, msg)

	// demo and admin sessions are approved without a row
	if c.IsDemo() || c.IsAdmin() {
		return &dto.PaymentNotice{
			Status:      string(access.PaymentApproved),
			State:       string(access.StateApproved),
			WhatsAppURL: link,
			Message:     msg,
		}, nil
	}

	a, err := uc.repo.GetAccess(ctx, c.UserID)
	if err != nil {
		return nil, err
	}
	current, err := access.ParsePaymentStatus(a.Status)
	if err != nil {
		current = access.PaymentPending
	}

	next, err := access.Transition(access.SignIn(current), access.EventNotifyPayment)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	a.Status = string(access.StatusFor(next))
	a.NotifiedAt = &now
	a.UpdatedAt = now
	if err := uc.repo.SaveAccess(ctx, a); err != nil {
		return nil, err
	}

	if err := uc.events.Publish(ctx, session.Event{
		UserID: c.UserID,
		Type:   session.EventAccessChanged,
		Status: a.Status,
		State:  string(next),
		At:     now,
	}); err != nil {
		uc.log.Warn("access event not published", zap.String("user_id", c.UserID), zap.Error(err))
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   audit.Ptr(c.UserID),
		Action:   "payment_notified",
		Entity:   "user_access",
		EntityID: audit.Ptr(c.UserID),
	})

	return &dto.PaymentNotice{
		Status:      a.Status,
		State:       string(next),
		WhatsAppURL: link,
		Message:     msg,
	}, nil
}

func NotifyMessage(price, email string) string {
	return fmt.Sprintf(
		"Olá! Acabei de fazer o PIX de R$ %s para liberar meu acesso no App Jacaré do Corte. Meu email é: %s",
		price, email,
	)
}

// WhatsAppLink percent-encodes the text the way browsers do for a
// URI component, so spaces are %20 rather than '+'.
func WhatsAppLink(number, text string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return "https://wa.me/" + number + "?text=" + escaped
}
