package account

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/jacare-do-corte/internal/audit"
	"github.com/BruksfildServices01/jacare-do-corte/internal/auth"
	"github.com/BruksfildServices01/jacare-do-corte/internal/domain/access"
	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/account"
	"github.com/BruksfildServices01/jacare-do-corte/internal/dto"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
	"github.com/BruksfildServices01/jacare-do-corte/internal/session"
)

const CodeTTL = 10 * time.Minute

type RegisterInput struct {
	Name                 string
	Email                string
	Phone                string
	Password             string
	PasswordConfirmation string
}

// ======================================================
// USE CASE
// ======================================================

type Auth struct {
	repo    domain.Repository
	codes   CodeStore
	revoked Revocations
	events  session.Publisher
	audit   audit.Recorder
	log     *zap.Logger

	secret  string
	isAdmin func(email string) bool
	now     func() time.Time
}

func NewAuth(
	repo domain.Repository,
	codes CodeStore,
	revoked Revocations,
	events session.Publisher,
	audit audit.Recorder,
	log *zap.Logger,
	secret string,
	isAdmin func(email string) bool,
) *Auth {
	return &Auth{
		repo:    repo,
		codes:   codes,
		revoked: revoked,
		events:  events,
		audit:   audit,
		log:     log,
		secret:  secret,
		isAdmin: isAdmin,
		now:     time.Now,
	}
}

// ======================================================
// REGISTER
// ======================================================

func (uc *Auth) Register(ctx context.Context, in RegisterInput) (*dto.AuthResponse, error) {
	if strings.TrimSpace(in.Name) == "" || in.Email == "" || in.Password == "" {
		return nil, httperr.ErrBusiness("missing_fields")
	}
	if in.Password != in.PasswordConfirmation {
		return nil, httperr.ErrBusiness("password_mismatch")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        domain.NormalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         auth.RoleClient,
	}

	if err := uc.repo.CreateUser(ctx, &u); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   audit.Ptr(u.ID),
		Action:   "user_registered",
		Entity:   "user",
		EntityID: audit.Ptr(u.ID),
	})

	return uc.issue(u, access.PaymentPending)
}

// ======================================================
// PASSWORD SIGN-IN
// ======================================================

func (uc *Auth) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	u, err := uc.repo.GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if httperr.IsBusiness(err, "user_not_found") {
		return nil, httperr.ErrBusiness("invalid_credentials")
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, httperr.ErrBusiness("invalid_credentials")
	}

	return uc.signIn(ctx, *u)
}

// ======================================================
// ONE-TIME CODE
// ======================================================

// RequestCode stores a 6-digit code for a known email. Unknown emails
// get the same silent success so the endpoint does not reveal accounts.
func (uc *Auth) RequestCode(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return httperr.ErrBusiness("missing_fields")
	}

	if _, err := uc.repo.GetUserByEmail(ctx, email); err != nil {
		if httperr.IsBusiness(err, "user_not_found") {
			uc.log.Info("sign-in code requested for unknown email", zap.String("email", email))
			return nil
		}
		return err
	}

	code, err := newCode()
	if err != nil {
		return err
	}
	if err := uc.codes.Save(ctx, email, code, CodeTTL); err != nil {
		return fmt.Errorf("save sign-in code: %w", err)
	}

	// delivery is a log line
	uc.log.Info("sign-in code issued", zap.String("email", email), zap.String("code", code))
	return nil
}

func (uc *Auth) VerifyCode(ctx context.Context, email, code string) (*dto.AuthResponse, error) {
	email = domain.NormalizeEmail(email)

	ok, err := uc.codes.Consume(ctx, email, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.ErrBusiness("invalid_code")
	}

	u, err := uc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return uc.signIn(ctx, *u)
}

// ======================================================
// DEMO / SIGN-OUT
// ======================================================

func (uc *Auth) Demo() (*dto.AuthResponse, error) {
	return uc.issueWithRole(domain.DemoUser(), auth.RoleDemo, access.PaymentApproved)
}

// Logout revokes the token for the rest of its lifetime. Callers clear
// their local state whatever this returns.
func (uc *Auth) Logout(ctx context.Context, c Caller) error {
	if c.TokenID != "" {
		if err := uc.revoked.Revoke(ctx, c.TokenID, c.ExpiresAt.Sub(uc.now())); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
	}

	if err := uc.events.Publish(ctx, session.Event{
		UserID: c.UserID,
		Type:   session.EventSignedOut,
		State:  string(access.StateUnauthenticated),
		At:     uc.now(),
	}); err != nil {
		uc.log.Warn("sign-out event not published", zap.String("user_id", c.UserID), zap.Error(err))
	}
	return nil
}

// ======================================================
// HELPERS
// ======================================================

func (uc *Auth) signIn(ctx context.Context, u models.User) (*dto.AuthResponse, error) {
	a, err := uc.repo.GetAccess(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	status, err := access.ParsePaymentStatus(a.Status)
	if err != nil {
		status = access.PaymentPending
	}
	return uc.issue(u, status)
}

func (uc *Auth) issue(u models.User, status access.PaymentStatus) (*dto.AuthResponse, error) {
	role := auth.RoleClient
	if u.Role == auth.RoleAdmin || uc.isAdmin(u.Email) {
		role = auth.RoleAdmin
	}
	return uc.issueWithRole(u, role, status)
}

func (uc *Auth) issueWithRole(u models.User, role string, status access.PaymentStatus) (*dto.AuthResponse, error) {
	now := uc.now()
	token, err := auth.MakeToken(u.ID, u.Email, role, uc.secret, now)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: now.Add(auth.TokenTTL),
		Session: dto.SessionView{
			User:   toSessionUser(u, role),
			Access: accessView(status, role),
			Demo:   role == auth.RoleDemo,
		},
	}, nil
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
