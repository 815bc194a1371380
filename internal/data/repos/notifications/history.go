package notifications

import (
	"gorm.io/gorm"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/platform/dbctx"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type HistoryQuery struct {
	ModuleName string
	LinkedID   string
	Channel    string
	Limit      int
}

type NotificationHistoryRepo interface {
	Create(dbc dbctx.Context, rows []*types.NotificationHistory) ([]*types.NotificationHistory, error)
	List(dbc dbctx.Context, q HistoryQuery) ([]*types.NotificationHistory, error)
}

type notificationHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationHistoryRepo(db *gorm.DB, baseLog *logger.Logger) NotificationHistoryRepo {
	return &notificationHistoryRepo{
		db:  db,
		log: baseLog.With("repo", "NotificationHistoryRepo"),
	}
}

func (r *notificationHistoryRepo) Create(dbc dbctx.Context, rows []*types.NotificationHistory) ([]*types.NotificationHistory, error) {
	if len(rows) == 0 {
		return []*types.NotificationHistory{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *notificationHistoryRepo) List(dbc dbctx.Context, q HistoryQuery) ([]*types.NotificationHistory, error) {
	tx := dbc.DB(r.db).Model(&types.NotificationHistory{})
	if q.ModuleName != "" {
		tx = tx.Where("module_name = ?", q.ModuleName)
	}
	if q.LinkedID != "" {
		tx = tx.Where("linked_id = ?", q.LinkedID)
	}
	if q.Channel != "" {
		tx = tx.Where("channel = ?", q.Channel)
	}
	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	out := []*types.NotificationHistory{}
	if err := tx.Order("sent_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
