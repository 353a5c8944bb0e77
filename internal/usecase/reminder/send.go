package reminder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/appointment"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

const (
	windowStart = 50 * time.Minute
	windowEnd   = 70 * time.Minute

	// claims outlive the window so the next hourly run skips them
	claimTTL = 2 * time.Hour

	NothingToRemind = "No appointments to remind right now."
	Disabled        = "Email reminders are disabled."

	StatusSent            = "email_sent"
	StatusAlreadyReminded = "already_reminded"
	StatusDisabled        = "disabled"
)

// Automations answers whether an owner-panel toggle is on.
type Automations interface {
	IsActive(ctx context.Context, key string) (bool, error)
}

// Deduper claims an appointment for one reminder. Claim reports false
// when another run already claimed it.
type Deduper interface {
	Claim(ctx context.Context, appointmentID string, ttl time.Duration) (bool, error)
}

type Detail struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Result struct {
	Message   string   `json:"message,omitempty"`
	Success   bool     `json:"success"`
	Method    string   `json:"method,omitempty"`
	Status    string   `json:"status,omitempty"`
	Processed int      `json:"processed"`
	Details   []Detail `json:"details,omitempty"`
}

type SendReminders struct {
	repo        domain.Repository
	automations Automations
	dedup       Deduper
	log         *zap.Logger
	loc         *time.Location
	now         func() time.Time
}

func NewSendReminders(
	repo domain.Repository,
	automations Automations,
	dedup Deduper,
	log *zap.Logger,
	loc *time.Location,
) *SendReminders {
	return &SendReminders{
		repo:        repo,
		automations: automations,
		dedup:       dedup,
		log:         log,
		loc:         loc,
		now:         time.Now,
	}
}

func (uc *SendReminders) Execute(ctx context.Context) (*Result, error) {
	uc.log.Info("checking for appointments to remind")

	// --------------------------------------------------
	// 1. Automação ligada?
	// --------------------------------------------------
	active, err := uc.automations.IsActive(ctx, models.AutomationEmailReminder)
	if err != nil {
		// the toggle defaults to on; a lookup failure must not silence reminders
		uc.log.Warn("automation lookup failed, assuming active", zap.Error(err))
		active = true
	}
	if !active {
		return &Result{Message: Disabled, Success: true, Method: "email", Status: StatusDisabled}, nil
	}

	// --------------------------------------------------
	// 2. Janela (agora+50min, agora+70min)
	// --------------------------------------------------
	now := uc.now()
	rows, err := uc.repo.ListScheduledBetween(ctx, now.Add(windowStart), now.Add(windowEnd))
	if err != nil {
		return nil, fmt.Errorf("list reminder window: %w", err)
	}

	if len(rows) == 0 {
		return &Result{Message: NothingToRemind, Success: true}, nil
	}

	// --------------------------------------------------
	// 3. Um lembrete por agendamento
	// --------------------------------------------------
	details := make([]Detail, 0, len(rows))
	for _, ap := range rows {
		details = append(details, uc.remind(ctx, ap, now))
	}

	return &Result{
		Success:   true,
		Method:    "email",
		Processed: len(details),
		Details:   details,
	}, nil
}

func (uc *SendReminders) remind(ctx context.Context, ap models.Appointment, now time.Time) Detail {
	if ap.RemindedAt != nil {
		return Detail{ID: ap.ID, Status: StatusAlreadyReminded, Message: "Reminder already sent"}
	}

	claimed, err := uc.dedup.Claim(ctx, ap.ID, claimTTL)
	if err != nil {
		uc.log.Warn("reminder claim failed, sending anyway",
			zap.String("appointment_id", ap.ID),
			zap.Error(err),
		)
		claimed = true
	}
	if !claimed {
		return Detail{ID: ap.ID, Status: StatusAlreadyReminded, Message: "Reminder already sent"}
	}

	uc.log.Info("reminder email",
		zap.String("appointment_id", ap.ID),
		zap.String("user_id", ap.UserID),
		zap.String("to", recipient(ap)),
		zap.String("subject", "Lembrete de Agendamento"),
		zap.String("body", Message(ap, uc.loc)),
	)

	if err := uc.repo.MarkReminded(ctx, ap.ID, now); err != nil {
		uc.log.Warn("mark reminded failed", zap.String("appointment_id", ap.ID), zap.Error(err))
	}

	return Detail{ID: ap.ID, Status: StatusSent, Message: "Email queued"}
}

// Message is the reminder text; missing names use generic words.
func Message(ap models.Appointment, loc *time.Location) string {
	service, barber := "serviço", "profissional"
	if ap.Service != nil && ap.Service.Name != "" {
		service = ap.Service.Name
	}
	if ap.Barber != nil && ap.Barber.Name != "" {
		barber = ap.Barber.Name
	}

	return fmt.Sprintf(
		"Olá! Lembrete do Jacaré do Corte 🐊 Seu agendamento para *%s* com *%s* começa em breve! Horário: %s Nos vemos em 1 hora!",
		service, barber, ap.StartTime.In(loc).Format("15:04"),
	)
}

func recipient(ap models.Appointment) string {
	if ap.User != nil && ap.User.Email != "" {
		return ap.User.Email
	}
	return "user:" + ap.UserID
}
