package domain

import (
	"github.com/yungbote/opsdesk-backend/internal/domain/fields"
	"github.com/yungbote/opsdesk-backend/internal/domain/notifications"
	"github.com/yungbote/opsdesk-backend/internal/domain/search"
	"github.com/yungbote/opsdesk-backend/internal/domain/templates"
)

type FieldDefinition = fields.FieldDefinition
type FieldOption = fields.Option
type FieldValidation = fields.Validation
type FieldType = fields.FieldType

type ModuleTemplate = templates.ModuleTemplate
type TemplateType = templates.TemplateType

type NotificationHistory = notifications.NotificationHistory
type DeliveryConfig = notifications.DeliveryConfig
type DeliveryResult = notifications.DeliveryResult
type NotificationJob = notifications.NotificationJob

type SearchDocument = search.SearchDocument
type SearchHistory = search.SearchHistory

const (
	FieldTypeText     = fields.TypeText
	FieldTypeTextarea = fields.TypeTextarea
	FieldTypeNumber   = fields.TypeNumber
	FieldTypeDate     = fields.TypeDate
	FieldTypeSelect   = fields.TypeSelect
	FieldTypeBoolean  = fields.TypeBoolean
	FieldTypeEmail    = fields.TypeEmail
	FieldTypeTel      = fields.TypeTel

	TemplateTypeAIPrompt = templates.TypeAIPrompt
	TemplateTypeSlack    = templates.TypeSlack
	TemplateTypeEmail    = templates.TypeEmail
	TemplateTypeSMS      = templates.TypeSMS
	TemplateTypePDF      = templates.TypePDF
	TemplateTypeCustom   = templates.TypeCustom
)
