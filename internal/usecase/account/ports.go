package account

import (
	"context"
	"time"

	"github.com/BruksfildServices01/jacare-do-corte/internal/auth"
	"github.com/BruksfildServices01/jacare-do-corte/internal/domain/access"
	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/account"
	"github.com/BruksfildServices01/jacare-do-corte/internal/dto"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

// CodeStore keeps one-time sign-in codes.
type CodeStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	Consume(ctx context.Context, email, code string) (bool, error)
}

type Revocations interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Uploader interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// Caller is the authenticated identity taken from the token.
type Caller struct {
	UserID    string
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

func (c Caller) IsDemo() bool  { return c.Role == auth.RoleDemo }
func (c Caller) IsAdmin() bool { return c.Role == auth.RoleAdmin }

func toSessionUser(u models.User, role string) dto.SessionUser {
	return dto.SessionUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		AvatarURL: u.AvatarURL,
		Role:      role,
	}
}

func accessView(status access.PaymentStatus, role string) dto.AccessView {
	d := access.Decide(access.Subject{
		Authenticated: true,
		Admin:         role == auth.RoleAdmin,
		Demo:          role == auth.RoleDemo,
		Status:        status,
	}, access.Surface{})

	return dto.AccessView{
		Status:   string(status),
		State:    string(d.State),
		Allow:    d.Allow,
		Redirect: d.Redirect,
	}
}

// statusOf reads the stored payment status; demo identities are approved.
func statusOf(ctx context.Context, repo domain.Repository, c Caller) (access.PaymentStatus, error) {
	if c.IsDemo() {
		return access.PaymentApproved, nil
	}
	a, err := repo.GetAccess(ctx, c.UserID)
	if err != nil {
		return "", err
	}
	st, err := access.ParsePaymentStatus(a.Status)
	if err != nil {
		return access.PaymentPending, nil
	}
	return st, nil
}

