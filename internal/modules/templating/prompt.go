package templating

import (
	"context"
	"fmt"
	"strings"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
)

type PromptType string

const (
	PromptSummary    PromptType = "summary"
	PromptAnalysis   PromptType = "analysis"
	PromptSuggestion PromptType = "suggestion"
)

var promptFormats = map[PromptType]string{
	PromptSummary:    "以下の%s情報を要約してください：\n\n%s",
	PromptAnalysis:   "以下の%s情報を分析し、改善点や注意点を提案してください：\n\n%s",
	PromptSuggestion: "以下の%s情報に基づいて、次のアクションを提案してください：\n\n%s",
}

// ParsePromptType maps s onto a known prompt type, defaulting to summary.
func ParsePromptType(s string) PromptType {
	pt := PromptType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := promptFormats[pt]; ok {
		return pt
	}
	return PromptSummary
}

// GeneratePrompt projects data through module's AI fields and wraps the
// resulting "label: value" lines in the prompt format for pt.
func (e *Engine) GeneratePrompt(ctx context.Context, module string, data Context, pt PromptType) (string, error) {
	fields, err := e.AIFields(ctx, module)
	if err != nil {
		return "", err
	}
	return BuildPrompt(module, fields, data, pt), nil
}

// BuildPrompt is the pure half of GeneratePrompt. fields must already be
// the module's AI fields in display order.
func BuildPrompt(module string, fields []*types.FieldDefinition, data Context, pt PromptType) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			continue
		}
		v, ok := data[f.FieldKey]
		if !ok || v == nil {
			continue
		}
		lines = append(lines, f.Label+": "+displayValue(f, v))
	}

	format, ok := promptFormats[pt]
	if !ok {
		format = promptFormats[PromptSummary]
	}
	return fmt.Sprintf(format, ModuleLabel(module), strings.Join(lines, "\n"))
}

func displayValue(f *types.FieldDefinition, v any) string {
	switch f.Type {
	case types.FieldTypeSelect:
		s := Stringify(v)
		for _, opt := range f.OptionList() {
			if opt.Value != nil && Stringify(opt.Value) == s {
				if opt.Label != "" {
					return opt.Label
				}
				break
			}
		}
		return s
	case types.FieldTypeBoolean:
		if truthy(v) {
			return "はい"
		}
		return "いいえ"
	default:
		return Stringify(v)
	}
}
