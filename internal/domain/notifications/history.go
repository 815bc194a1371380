package notifications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationHistory records one delivery attempt, successful or not.
type NotificationHistory struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleName   string         `gorm:"column:module_name;not null;index:idx_notification_module_linked,priority:1" json:"module_name"`
	LinkedID     string         `gorm:"column:linked_id;index:idx_notification_module_linked,priority:2" json:"linked_id,omitempty"`
	Channel      string         `gorm:"column:channel;not null;index" json:"channel"`
	TemplateName string         `gorm:"column:template_name" json:"template_name,omitempty"`
	Content      string         `gorm:"column:content;type:text" json:"content"`
	Recipients   datatypes.JSON `gorm:"column:recipients;type:jsonb" json:"recipients"`
	Result       datatypes.JSON `gorm:"column:result;type:jsonb" json:"result"`
	Success      bool           `gorm:"column:success;not null;index" json:"success"`
	SentAt       time.Time      `gorm:"column:sent_at;not null;index" json:"sent_at"`
}

func (NotificationHistory) TableName() string { return "notification_history" }

func (h *NotificationHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.SentAt.IsZero() {
		h.SentAt = time.Now().UTC()
	}
	return nil
}
