package account

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BruksfildServices01/jacare-do-corte/internal/audit"
	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/account"
	"github.com/BruksfildServices01/jacare-do-corte/internal/dto"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/imaging"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

// Profile serves the session container reads and the profile screen.
type Profile struct {
	repo    domain.Repository
	storage Uploader
	audit   audit.Recorder
	now     func() time.Time
}

func NewProfile(repo domain.Repository, storage Uploader, audit audit.Recorder) *Profile {
	return &Profile{
		repo:    repo,
		storage: storage,
		audit:   audit,
		now:     time.Now,
	}
}

func (uc *Profile) Session(ctx context.Context, c Caller) (*dto.SessionView, error) {
	u, err := uc.user(ctx, c)
	if err != nil {
		return nil, err
	}
	status, err := statusOf(ctx, uc.repo, c)
	if err != nil {
		return nil, err
	}

	return &dto.SessionView{
		User:   toSessionUser(*u, c.Role),
		Access: accessView(status, c.Role),
		Demo:   c.IsDemo(),
	}, nil
}

func (uc *Profile) Access(ctx context.Context, c Caller) (*dto.AccessView, error) {
	status, err := statusOf(ctx, uc.repo, c)
	if err != nil {
		return nil, err
	}
	v := accessView(status, c.Role)
	return &v, nil
}

func (uc *Profile) Update(ctx context.Context, c Caller, name, phone string) (*dto.SessionUser, error) {
	if c.IsDemo() {
		return nil, httperr.ErrBusiness("demo_read_only")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, httperr.ErrBusiness("missing_fields")
	}

	u, err := uc.repo.UpdateProfile(ctx, c.UserID, name, strings.TrimSpace(phone))
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   audit.Ptr(c.UserID),
		Action:   "profile_updated",
		Entity:   "user",
		EntityID: audit.Ptr(c.UserID),
	})

	out := toSessionUser(*u, c.Role)
	return &out, nil
}

// UploadAvatar stores a 256x256 WebP and returns its public URL.
func (uc *Profile) UploadAvatar(ctx context.Context, c Caller, r io.Reader) (string, error) {
	if c.IsDemo() {
		return "", httperr.ErrBusiness("demo_read_only")
	}

	img, err := imaging.Avatar(r)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("avatars/%s-%d.webp", c.UserID, uc.now().Unix())
	url, err := uc.storage.Put(ctx, key, imaging.ContentType, img)
	if err != nil {
		return "", err
	}

	if err := uc.repo.SetAvatar(ctx, c.UserID, url); err != nil {
		return "", err
	}
	return url, nil
}

func (uc *Profile) Preferences(ctx context.Context, c Caller) (*dto.Preferences, error) {
	if c.IsDemo() {
		return &dto.Preferences{Notifications: true}, nil
	}
	p, err := uc.repo.GetPreferences(ctx, c.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.Preferences{DarkMode: p.DarkMode, Notifications: p.Notifications}, nil
}

func (uc *Profile) SavePreferences(ctx context.Context, c Caller, in dto.Preferences) (*dto.Preferences, error) {
	if c.IsDemo() {
		return nil, httperr.ErrBusiness("demo_read_only")
	}

	p := models.UserPreference{
		UserID:        c.UserID,
		DarkMode:      in.DarkMode,
		Notifications: in.Notifications,
		UpdatedAt:     uc.now(),
	}
	if err := uc.repo.SavePreferences(ctx, &p); err != nil {
		return nil, err
	}
	return &in, nil
}

func (uc *Profile) user(ctx context.Context, c Caller) (*models.User, error) {
	if c.IsDemo() {
		u := domain.DemoUser()
		return &u, nil
	}
	return uc.repo.GetUser(ctx, c.UserID)
}
