package templates

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TemplateType string

const (
	TypeAIPrompt TemplateType = "ai_prompt"
	TypeSlack    TemplateType = "slack"
	TypeEmail    TemplateType = "email"
	TypeSMS      TemplateType = "sms"
	TypePDF      TemplateType = "pdf"
	TypeCustom   TemplateType = "custom"
)

func (t TemplateType) Valid() bool {
	switch t {
	case TypeAIPrompt, TypeSlack, TypeEmail, TypeSMS, TypePDF, TypeCustom:
		return true
	}
	return false
}

// ModuleTemplate is an administrator-managed template string for a module.
// Content may reference {{field_key}} tokens; references to keys the module
// does not declare are reported as warnings, never rejected.
type ModuleTemplate struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleName   string       `gorm:"column:module_name;not null;index:idx_module_template_lookup,priority:1" json:"module_name"`
	TemplateType TemplateType `gorm:"column:template_type;not null;index:idx_module_template_lookup,priority:2" json:"template_type"`
	Name         string       `gorm:"column:name;not null;index:idx_module_template_lookup,priority:3" json:"name"`
	Description  string       `gorm:"column:description;type:text" json:"description,omitempty"`
	Content      string       `gorm:"column:content;type:text;not null" json:"content"`
	IsActive     bool         `gorm:"column:is_active;not null" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ModuleTemplate) TableName() string { return "module_templates" }

func (t *ModuleTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
