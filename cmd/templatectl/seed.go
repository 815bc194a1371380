package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/domain/fields"
	"github.com/yungbote/opsdesk-backend/internal/domain/templates"
)

// seedFile is the on-disk shape of a seed, grouped by module:
//
//	modules:
//	  leads:
//	    fields:
//	      - key: company_name
//	        label: 会社名
//	        type: text
//	        required: true
//	    templates:
//	      - name: 新規リード通知
//	        type: slack
//	        content: "{{company_name}} ..."
type seedFile struct {
	Modules map[string]seedModule `yaml:"modules"`
}

type seedModule struct {
	Fields    []seedField    `yaml:"fields"`
	Templates []seedTemplate `yaml:"templates"`
}

type seedField struct {
	Key        string             `yaml:"key"`
	Label      string             `yaml:"label"`
	Type       string             `yaml:"type"`
	Options    []fields.Option    `yaml:"options,omitempty"`
	Validation *fields.Validation `yaml:"validation,omitempty"`
	Required   bool               `yaml:"required"`
	// Visible and Variable default to true when omitted.
	Visible  *bool `yaml:"visible,omitempty"`
	AI       bool  `yaml:"ai_enabled"`
	Variable *bool `yaml:"variable_enabled,omitempty"`
}

type seedTemplate struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`
	Content     string `yaml:"content"`
	Active      *bool  `yaml:"active,omitempty"`
}

func loadSeedFile(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return parseSeed(raw)
}

func parseSeed(raw []byte) (*seedFile, error) {
	var s seedFile
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(s.Modules) == 0 {
		return nil, fmt.Errorf("seed file has no modules")
	}
	return &s, nil
}

// fieldDefinitions flattens the seed. OrderIndex follows file order within
// each module.
func (s *seedFile) fieldDefinitions() ([]*types.FieldDefinition, error) {
	var out []*types.FieldDefinition
	for module, m := range s.Modules {
		for i, f := range m.Fields {
			if f.Key == "" || f.Label == "" {
				return nil, fmt.Errorf("%s: field %d needs key and label", module, i)
			}
			def := &types.FieldDefinition{
				ModuleName:      module,
				FieldKey:        f.Key,
				Label:           f.Label,
				Type:            fields.FieldType(orDefault(f.Type, string(fields.TypeText))),
				Required:        f.Required,
				Visible:         boolOr(f.Visible, true),
				AIEnabled:       f.AI,
				VariableEnabled: boolOr(f.Variable, true),
				OrderIndex:      i,
			}
			if len(f.Options) > 0 {
				b, err := json.Marshal(f.Options)
				if err != nil {
					return nil, err
				}
				def.Options = datatypes.JSON(b)
			}
			if f.Validation != nil {
				b, err := json.Marshal(f.Validation)
				if err != nil {
					return nil, err
				}
				def.Validation = datatypes.JSON(b)
			}
			out = append(out, def)
		}
	}
	return out, nil
}

func (s *seedFile) moduleTemplates() []*types.ModuleTemplate {
	var out []*types.ModuleTemplate
	for module, m := range s.Modules {
		for _, t := range m.Templates {
			out = append(out, &types.ModuleTemplate{
				ModuleName:   module,
				Name:         t.Name,
				TemplateType: templates.TemplateType(t.Type),
				Description:  t.Description,
				Content:      t.Content,
				IsActive:     boolOr(t.Active, true),
			})
		}
	}
	return out
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
