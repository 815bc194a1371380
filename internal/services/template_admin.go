package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/opsdesk-backend/internal/data/dberr"
	"github.com/yungbote/opsdesk-backend/internal/data/repos"
	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
	"github.com/yungbote/opsdesk-backend/internal/platform/apierr"
	"github.com/yungbote/opsdesk-backend/internal/platform/dbctx"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type TemplateListQuery = repos.TemplateListQuery

// TemplateInput is a create or update payload. On update, nil or empty
// fields keep their stored value.
type TemplateInput struct {
	ModuleName   string `json:"module_name"`
	TemplateType string `json:"template_type"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Content      string `json:"content"`
	IsActive     *bool  `json:"is_active"`
}

// SavedTemplate carries the validator's report alongside the saved row.
// Warnings never block a save.
type SavedTemplate struct {
	Template *types.ModuleTemplate       `json:"template"`
	Warnings templating.ValidationResult `json:"warnings"`
}

type TemplatePreview struct {
	SampleData templating.Context `json:"sample_data"`
	Result     string             `json:"result"`
}

type TemplateAdminService interface {
	List(ctx context.Context, q TemplateListQuery) ([]*types.ModuleTemplate, error)
	Get(ctx context.Context, id uuid.UUID) (*types.ModuleTemplate, error)
	Create(ctx context.Context, in TemplateInput) (*SavedTemplate, error)
	Update(ctx context.Context, id uuid.UUID, in TemplateInput) (*SavedTemplate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Preview(ctx context.Context, id uuid.UUID) (*TemplatePreview, error)
	Seed(ctx context.Context, fields []*types.FieldDefinition, tpls []*types.ModuleTemplate) error
}

// FieldInvalidator drops cached field listings of a module.
type FieldInvalidator interface {
	Invalidate(ctx context.Context, moduleName string) error
}

type templateAdminService struct {
	db          *gorm.DB
	log         *logger.Logger
	templates   repos.ModuleTemplateRepo
	fields      repos.FieldDefinitionRepo
	engine      *templating.Engine
	invalidator FieldInvalidator
}

// NewTemplateAdminService validates against store, which may be a cache in
// front of fields; seeding writes through fields directly and then clears
// the cache through invalidator. invalidator may be nil.
func NewTemplateAdminService(db *gorm.DB, log *logger.Logger, templates repos.ModuleTemplateRepo, fields repos.FieldDefinitionRepo, store templating.FieldStore, invalidator FieldInvalidator) TemplateAdminService {
	return &templateAdminService{
		db:          db,
		log:         log.With("service", "TemplateAdminService"),
		templates:   templates,
		fields:      fields,
		engine:      templating.NewEngine(store),
		invalidator: invalidator,
	}
}

func (s *templateAdminService) List(ctx context.Context, q TemplateListQuery) ([]*types.ModuleTemplate, error) {
	rows, err := s.templates.List(dbctx.Context{Ctx: ctx}, q)
	if err != nil {
		return nil, dberr.Map("template_list", err)
	}
	return rows, nil
}

func (s *templateAdminService) Get(ctx context.Context, id uuid.UUID) (*types.ModuleTemplate, error) {
	row, err := s.templates.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, dberr.Map("template_get", err)
	}
	if row == nil {
		return nil, apierr.NotFound("template_not_found", fmt.Errorf("template %s not found", id))
	}
	return row, nil
}

func (s *templateAdminService) Create(ctx context.Context, in TemplateInput) (*SavedTemplate, error) {
	row := &types.ModuleTemplate{
		ModuleName:   strings.TrimSpace(in.ModuleName),
		TemplateType: types.TemplateType(strings.TrimSpace(in.TemplateType)),
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Content:      in.Content,
		IsActive:     true,
	}
	if in.IsActive != nil {
		row.IsActive = *in.IsActive
	}
	if err := checkTemplate(row); err != nil {
		return nil, err
	}

	warnings, err := s.engine.Validate(ctx, row.Content, row.ModuleName)
	if err != nil {
		return nil, dberr.Map("field_list", err)
	}
	if _, err := s.templates.Create(dbctx.Context{Ctx: ctx}, []*types.ModuleTemplate{row}); err != nil {
		return nil, dberr.Map("template_create", err)
	}
	s.log.Info("Template created", "template_id", row.ID, "module", row.ModuleName, "type", row.TemplateType, "valid", warnings.IsValid)
	return &SavedTemplate{Template: row, Warnings: warnings}, nil
}

func (s *templateAdminService) Update(ctx context.Context, id uuid.UUID, in TemplateInput) (*SavedTemplate, error) {
	var (
		saved    *types.ModuleTemplate
		warnings templating.ValidationResult
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		cur, err := s.templates.GetByID(dbc, id)
		if err != nil {
			return dberr.Map("template_get", err)
		}
		if cur == nil {
			return apierr.NotFound("template_not_found", fmt.Errorf("template %s not found", id))
		}

		updates := map[string]interface{}{}
		if v := strings.TrimSpace(in.ModuleName); v != "" {
			cur.ModuleName = v
			updates["module_name"] = v
		}
		if v := strings.TrimSpace(in.TemplateType); v != "" {
			cur.TemplateType = types.TemplateType(v)
			updates["template_type"] = v
		}
		if v := strings.TrimSpace(in.Name); v != "" {
			cur.Name = v
			updates["name"] = v
		}
		if in.Description != "" {
			cur.Description = in.Description
			updates["description"] = in.Description
		}
		if in.Content != "" {
			cur.Content = in.Content
			updates["content"] = in.Content
		}
		if in.IsActive != nil {
			cur.IsActive = *in.IsActive
			updates["is_active"] = *in.IsActive
		}
		if err := checkTemplate(cur); err != nil {
			return err
		}

		warnings, err = s.engine.Validate(ctx, cur.Content, cur.ModuleName)
		if err != nil {
			return dberr.Map("field_list", err)
		}
		if err := s.templates.Update(dbc, id, updates); err != nil {
			return dberr.Map("template_update", err)
		}
		saved, err = s.templates.GetByID(dbc, id)
		if err != nil {
			return dberr.Map("template_get", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &SavedTemplate{Template: saved, Warnings: warnings}, nil
}

func (s *templateAdminService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.templates.Delete(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return dberr.Map("template_delete", err)
	}
	if !ok {
		return apierr.NotFound("template_not_found", fmt.Errorf("template %s not found", id))
	}
	s.log.Info("Template deleted", "template_id", id)
	return nil
}

// Preview expands the template against sample values for each of its
// module's available variables.
func (s *templateAdminService) Preview(ctx context.Context, id uuid.UUID) (*TemplatePreview, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	vars, err := s.engine.ListVariables(ctx, row.ModuleName)
	if err != nil {
		return nil, dberr.Map("field_list", err)
	}
	sample := templating.SampleContext(vars)
	return &TemplatePreview{SampleData: sample, Result: templating.Expand(row.Content, sample)}, nil
}

// Seed upserts field definitions and templates in one transaction so a
// rerun converges on the seed file.
func (s *templateAdminService) Seed(ctx context.Context, fields []*types.FieldDefinition, tpls []*types.ModuleTemplate) error {
	for _, t := range tpls {
		if err := checkTemplate(t); err != nil {
			return err
		}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.fields.Upsert(dbc, fields); err != nil {
			return dberr.Map("field_upsert", err)
		}
		if err := s.templates.UpsertByName(dbc, tpls); err != nil {
			return dberr.Map("template_upsert", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("Seed applied", "fields", len(fields), "templates", len(tpls))
	s.invalidateFields(ctx, fields)
	return nil
}

// invalidateFields clears cached listings for every seeded module. A cache
// failure is logged; the entries still expire with their TTL.
func (s *templateAdminService) invalidateFields(ctx context.Context, fields []*types.FieldDefinition) {
	if s.invalidator == nil {
		return
	}
	seen := map[string]bool{}
	for _, f := range fields {
		if f == nil || seen[f.ModuleName] {
			continue
		}
		seen[f.ModuleName] = true
		if err := s.invalidator.Invalidate(ctx, f.ModuleName); err != nil {
			s.log.Warn("Field cache invalidation failed", "module", f.ModuleName, "error", err)
		}
	}
}

func checkTemplate(t *types.ModuleTemplate) error {
	switch {
	case t.ModuleName == "":
		return apierr.BadRequest("template_module_required", fmt.Errorf("module_name required"))
	case !t.TemplateType.Valid():
		return apierr.BadRequest("template_type_invalid", fmt.Errorf("invalid template_type %q", t.TemplateType))
	case t.Name == "":
		return apierr.BadRequest("template_name_required", fmt.Errorf("name required"))
	case strings.TrimSpace(t.Content) == "":
		return apierr.BadRequest("template_content_required", fmt.Errorf("content required"))
	}
	return nil
}
