package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
)

func SeedField(tb testing.TB, ctx context.Context, tx *gorm.DB, module, key string, order int, mutate func(*types.FieldDefinition)) *types.FieldDefinition {
	tb.Helper()
	f := &types.FieldDefinition{
		ModuleName:      module,
		FieldKey:        key,
		Label:           key,
		Type:            types.FieldTypeText,
		Visible:         true,
		AIEnabled:       true,
		VariableEnabled: true,
		OrderIndex:      order,
	}
	if mutate != nil {
		mutate(f)
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed field: %v", err)
	}
	return f
}

func SeedTemplate(tb testing.TB, ctx context.Context, tx *gorm.DB, module string, typ types.TemplateType, name, content string) *types.ModuleTemplate {
	tb.Helper()
	t := &types.ModuleTemplate{
		ModuleName:   module,
		TemplateType: typ,
		Name:         name,
		Content:      content,
		IsActive:     true,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed template: %v", err)
	}
	return t
}
