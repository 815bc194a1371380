package fields

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
	"github.com/yungbote/opsdesk-backend/internal/platform/dbctx"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type FieldDefinitionRepo interface {
	templating.FieldStore

	List(dbc dbctx.Context, moduleName string, filter templating.FieldFilter) ([]*types.FieldDefinition, error)
	Upsert(dbc dbctx.Context, defs []*types.FieldDefinition) ([]*types.FieldDefinition, error)
	DeleteByModule(dbc dbctx.Context, moduleName string) error
}

type fieldDefinitionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFieldDefinitionRepo(db *gorm.DB, baseLog *logger.Logger) FieldDefinitionRepo {
	return &fieldDefinitionRepo{
		db:  db,
		log: baseLog.With("repo", "FieldDefinitionRepo"),
	}
}

func (r *fieldDefinitionRepo) ListFields(ctx context.Context, moduleName string, filter templating.FieldFilter) ([]*types.FieldDefinition, error) {
	return r.List(dbctx.Context{Ctx: ctx}, moduleName, filter)
}

func (r *fieldDefinitionRepo) List(dbc dbctx.Context, moduleName string, filter templating.FieldFilter) ([]*types.FieldDefinition, error) {
	q := dbc.DB(r.db).Where("module_name = ?", moduleName)
	if filter.AIEnabled != nil {
		q = q.Where("ai_enabled = ?", *filter.AIEnabled)
	}
	if filter.VariableEnabled != nil {
		q = q.Where("variable_enabled = ?", *filter.VariableEnabled)
	}
	if filter.Visible != nil {
		q = q.Where("visible = ?", *filter.Visible)
	}
	out := []*types.FieldDefinition{}
	if err := q.Order("order_index ASC").Order("field_key ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert inserts defs, replacing the mutable columns of any existing
// (module_name, field_key) row.
func (r *fieldDefinitionRepo) Upsert(dbc dbctx.Context, defs []*types.FieldDefinition) ([]*types.FieldDefinition, error) {
	if len(defs) == 0 {
		return []*types.FieldDefinition{}, nil
	}
	err := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "module_name"}, {Name: "field_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"label", "type", "options", "validation",
				"required", "visible", "ai_enabled", "variable_enabled",
				"order_index", "updated_at",
			}),
		}).
		Create(&defs).Error
	if err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *fieldDefinitionRepo) DeleteByModule(dbc dbctx.Context, moduleName string) error {
	return dbc.DB(r.db).
		Where("module_name = ?", moduleName).
		Delete(&types.FieldDefinition{}).Error
}
