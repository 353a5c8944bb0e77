package audit

import (
	"context"
	"strconv"
	"time"

	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Filter narrows the owner's audit trail. Empty fields match everything.
type Filter struct {
	Action string
	Entity string
	UserID string
	From   *time.Time
	To     *time.Time

	Page  int
	Limit int
}

// Page is one slice of the trail, newest first.
type Page struct {
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
	Logs  []models.AuditLog `json:"logs"`
}

// ParseFilter reads the query string values. Bad numbers and dates are
// ignored rather than rejected; To covers its whole day.
func ParseFilter(get func(key string) string) Filter {
	f := Filter{
		Action: get("action"),
		Entity: get("entity"),
		UserID: get("user_id"),
	}
	f.Page, _ = strconv.Atoi(get("page"))
	f.Limit, _ = strconv.Atoi(get("limit"))

	if from, err := time.Parse("2006-01-02", get("from")); err == nil {
		f.From = &from
	}
	if to, err := time.Parse("2006-01-02", get("to")); err == nil {
		end := to.Add(24 * time.Hour)
		f.To = &end
	}

	return f.normalized()
}

func (f Filter) normalized() Filter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > maxPageSize {
		f.Limit = defaultPageSize
	}
	return f
}

func (f Filter) offset() int {
	return (f.Page - 1) * f.Limit
}

// List pages through audit_logs.
func (l *Logger) List(ctx context.Context, f Filter) (*Page, error) {
	f = f.normalized()

	q := l.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	logs := make([]models.AuditLog, 0, f.Limit)
	if err := q.
		Order("created_at DESC").
		Limit(f.Limit).
		Offset(f.offset()).
		Find(&logs).Error; err != nil {
		return nil, err
	}

	return &Page{Page: f.Page, Limit: f.Limit, Total: total, Logs: logs}, nil
}
