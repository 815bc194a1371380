package templates

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/platform/dbctx"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

// ListQuery filters ModuleTemplate listings. Empty fields do not filter;
// Query matches name or content case-insensitively.
type ListQuery struct {
	ModuleName   string
	TemplateType types.TemplateType
	Query        string
	ActiveOnly   bool
}

type ModuleTemplateRepo interface {
	Create(dbc dbctx.Context, rows []*types.ModuleTemplate) ([]*types.ModuleTemplate, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ModuleTemplate, error)
	List(dbc dbctx.Context, q ListQuery) ([]*types.ModuleTemplate, error)
	FindActive(dbc dbctx.Context, moduleName, name string, templateType types.TemplateType) (*types.ModuleTemplate, error)
	TypesByModule(dbc dbctx.Context, moduleName string) ([]types.TemplateType, error)
	Update(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
	UpsertByName(dbc dbctx.Context, rows []*types.ModuleTemplate) error
}

type moduleTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleTemplateRepo(db *gorm.DB, baseLog *logger.Logger) ModuleTemplateRepo {
	return &moduleTemplateRepo{
		db:  db,
		log: baseLog.With("repo", "ModuleTemplateRepo"),
	}
}

func (r *moduleTemplateRepo) Create(dbc dbctx.Context, rows []*types.ModuleTemplate) ([]*types.ModuleTemplate, error) {
	if len(rows) == 0 {
		return []*types.ModuleTemplate{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID returns nil, nil when no row matches.
func (r *moduleTemplateRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ModuleTemplate, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.ModuleTemplate
	err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *moduleTemplateRepo) List(dbc dbctx.Context, q ListQuery) ([]*types.ModuleTemplate, error) {
	tx := dbc.DB(r.db).Model(&types.ModuleTemplate{})
	if q.ModuleName != "" {
		tx = tx.Where("module_name = ?", q.ModuleName)
	}
	if q.TemplateType != "" {
		tx = tx.Where("template_type = ?", q.TemplateType)
	}
	if q.ActiveOnly {
		tx = tx.Where("is_active = ?", true)
	}
	if s := strings.ToLower(strings.TrimSpace(q.Query)); s != "" {
		like := "%" + escapeLike(s) + "%"
		tx = tx.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(content) LIKE ? ESCAPE '\\')", like, like)
	}
	out := []*types.ModuleTemplate{}
	if err := tx.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindActive returns the newest active template for the triple, or nil.
func (r *moduleTemplateRepo) FindActive(dbc dbctx.Context, moduleName, name string, templateType types.TemplateType) (*types.ModuleTemplate, error) {
	var row types.ModuleTemplate
	err := dbc.DB(r.db).
		Where("module_name = ? AND name = ? AND template_type = ? AND is_active = ?", moduleName, name, templateType, true).
		Order("updated_at DESC").
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *moduleTemplateRepo) TypesByModule(dbc dbctx.Context, moduleName string) ([]types.TemplateType, error) {
	out := []types.TemplateType{}
	err := dbc.DB(r.db).
		Model(&types.ModuleTemplate{}).
		Where("module_name = ?", moduleName).
		Distinct("template_type").
		Order("template_type ASC").
		Pluck("template_type", &out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *moduleTemplateRepo) Update(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	res := dbc.DB(r.db).
		Model(&types.ModuleTemplate{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *moduleTemplateRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.ModuleTemplate{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpsertByName creates each row or overwrites the content of the existing
// (module, type, name) template. Used by seeding, which must be rerunnable.
func (r *moduleTemplateRepo) UpsertByName(dbc dbctx.Context, rows []*types.ModuleTemplate) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			var existing types.ModuleTemplate
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("module_name = ? AND template_type = ? AND name = ?", row.ModuleName, row.TemplateType, row.Name).
				Limit(1).
				Find(&existing).Error
			if err != nil {
				return err
			}
			if existing.ID == uuid.Nil {
				if err := tx.Create(row).Error; err != nil {
					return err
				}
				continue
			}
			row.ID = existing.ID
			if err := tx.Model(&existing).Updates(map[string]interface{}{
				"content":     row.Content,
				"description": row.Description,
				"is_active":   row.IsActive,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
