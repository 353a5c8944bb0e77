package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/account"
	"github.com/BruksfildServices01/jacare-do-corte/internal/httperr"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

type AccountGormRepository struct {
	db *gorm.DB
}

func NewAccountGormRepository(db *gorm.DB) *AccountGormRepository {
	return &AccountGormRepository{db: db}
}

// --------------------------------------------------
// Users
// --------------------------------------------------

func (r *AccountGormRepository) CreateUser(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			if httperr.IsUniqueViolation(err) {
				return httperr.ErrBusiness("email_already_exists")
			}
			return err
		}

		if err := tx.Create(&models.UserAccess{
			UserID: u.ID,
			Status: "pending",
		}).Error; err != nil {
			return err
		}

		// Select keeps gorm from skipping the false/true zero values
		return tx.Select("UserID", "DarkMode", "Notifications").
			Create(&models.UserPreference{
				UserID:        u.ID,
				DarkMode:      false,
				Notifications: true,
			}).Error
	})
}

func (r *AccountGormRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.ErrBusiness("user_not_found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AccountGormRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.ErrBusiness("user_not_found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AccountGormRepository) UpdateProfile(ctx context.Context, id, name, phone string) (*models.User, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "phone": phone})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, httperr.ErrBusiness("user_not_found")
	}
	return r.GetUser(ctx, id)
}

func (r *AccountGormRepository) SetAvatar(ctx context.Context, id, url string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("avatar_url", url).Error
}

// --------------------------------------------------
// Access
// --------------------------------------------------

func (r *AccountGormRepository) GetAccess(ctx context.Context, userID string) (*models.UserAccess, error) {
	var a models.UserAccess
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserAccess{UserID: userID, Status: "pending"}, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountGormRepository) SaveAccess(ctx context.Context, a *models.UserAccess) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "notified_at", "updated_at"}),
		}).
		Create(a).Error
}

// --------------------------------------------------
// Preferences
// --------------------------------------------------

func (r *AccountGormRepository) GetPreferences(ctx context.Context, userID string) (*models.UserPreference, error) {
	var p models.UserPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserPreference{UserID: userID, Notifications: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *AccountGormRepository) SavePreferences(ctx context.Context, p *models.UserPreference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"dark_mode", "notifications", "updated_at"}),
		}).
		Select("UserID", "DarkMode", "Notifications", "UpdatedAt").
		Create(p).Error
}

var _ domain.Repository = (*AccountGormRepository)(nil)
