package fields

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FieldType string

const (
	TypeText     FieldType = "text"
	TypeTextarea FieldType = "textarea"
	TypeNumber   FieldType = "number"
	TypeDate     FieldType = "date"
	TypeSelect   FieldType = "select"
	TypeBoolean  FieldType = "boolean"
	TypeEmail    FieldType = "email"
	TypeTel      FieldType = "tel"
)

// Option is one choice of a select field. Value keeps its JSON type, so
// numeric and boolean choices decode as well as strings.
type Option struct {
	Value any    `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Validation holds the optional per-field input rules.
type Validation struct {
	MinLength *int   `json:"minLength,omitempty" yaml:"min_length,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty" yaml:"max_length,omitempty"`
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// FieldDefinition describes one configurable form field of one module.
// FieldKey is the token name used by templates and is unique per module.
type FieldDefinition struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleName string    `gorm:"column:module_name;not null;uniqueIndex:idx_field_module_key,priority:1" json:"module_name"`
	FieldKey   string    `gorm:"column:field_key;not null;uniqueIndex:idx_field_module_key,priority:2" json:"field_key"`
	Label      string    `gorm:"column:label;not null" json:"label"`
	Type       FieldType `gorm:"column:type;not null" json:"type"`

	// Options is an ordered [{value,label}] list, only meaningful for select.
	Options    datatypes.JSON `gorm:"column:options;type:jsonb" json:"options,omitempty"`
	Validation datatypes.JSON `gorm:"column:validation;type:jsonb" json:"validation,omitempty"`

	Required        bool `gorm:"column:required;not null" json:"required"`
	Visible         bool `gorm:"column:visible;not null" json:"visible"`
	AIEnabled       bool `gorm:"column:ai_enabled;not null;index" json:"ai_enabled"`
	VariableEnabled bool `gorm:"column:variable_enabled;not null;index" json:"variable_enabled"`

	OrderIndex int `gorm:"column:order_index;not null;default:0" json:"order_index"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (FieldDefinition) TableName() string { return "field_definitions" }

func (f *FieldDefinition) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// OptionList decodes Options. Malformed or absent options yield nil.
func (f *FieldDefinition) OptionList() []Option {
	if f == nil || len(f.Options) == 0 {
		return nil
	}
	var out []Option
	if err := json.Unmarshal(f.Options, &out); err != nil {
		return nil
	}
	return out
}

// Rules decodes Validation; the zero value means no rules.
func (f *FieldDefinition) Rules() Validation {
	var v Validation
	if f == nil || len(f.Validation) == 0 {
		return v
	}
	_ = json.Unmarshal(f.Validation, &v)
	return v
}

// SetOptions encodes opts into Options.
func (f *FieldDefinition) SetOptions(opts []Option) error {
	if len(opts) == 0 {
		f.Options = nil
		return nil
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	f.Options = datatypes.JSON(b)
	return nil
}

// SetRules encodes v into Validation.
func (f *FieldDefinition) SetRules(v Validation) error {
	if v.MinLength == nil && v.MaxLength == nil && v.Pattern == "" {
		f.Validation = nil
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.Validation = datatypes.JSON(b)
	return nil
}
