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

type AutomationGormRepository struct {
	db *gorm.DB
}

func NewAutomationGormRepository(db *gorm.DB) *AutomationGormRepository {
	return &AutomationGormRepository{db: db}
}

// Seed inserts the default toggles without touching existing ones.
func (r *AutomationGormRepository) Seed(ctx context.Context) error {
	defaults := models.DefaultAutomations()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&defaults).Error
}

func (r *AutomationGormRepository) ListAutomations(ctx context.Context) ([]models.Automation, error) {
	var list []models.Automation
	if err := r.db.WithContext(ctx).
		Order("position ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *AutomationGormRepository) SetAutomation(ctx context.Context, key string, active bool) (*models.Automation, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Automation{}).
		Where("key = ?", key).
		Update("active", active)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, httperr.ErrBusiness("automation_not_found")
	}

	var a models.Automation
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AutomationGormRepository) IsActive(ctx context.Context, key string) (bool, error) {
	var a models.Automation
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, httperr.ErrBusiness("automation_not_found")
	}
	if err != nil {
		return false, err
	}
	return a.Active, nil
}

var _ domain.Automations = (*AutomationGormRepository)(nil)
