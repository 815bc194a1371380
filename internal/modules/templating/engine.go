package templating

import (
	"context"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
)

// Engine expands templates, builds AI prompts and notification texts, and
// validates template tokens against a module's field definitions.
//
// Each call performs at most one FieldStore read followed by pure string
// work; Engine holds no mutable state and is safe for concurrent use. Store
// errors are returned unchanged.
type Engine struct {
	store FieldStore
}

func NewEngine(store FieldStore) *Engine {
	return &Engine{store: store}
}

// AIFields returns the visible, AI-enabled fields of module by order_index.
func (e *Engine) AIFields(ctx context.Context, module string) ([]*types.FieldDefinition, error) {
	return e.store.ListFields(ctx, module, AIFieldFilter())
}

// VariableFields returns the visible, variable-enabled fields of module by
// order_index.
func (e *Engine) VariableFields(ctx context.Context, module string) ([]*types.FieldDefinition, error) {
	return e.store.ListFields(ctx, module, VariableFieldFilter())
}

// ListVariables returns the field keys usable as tokens in module's
// templates.
func (e *Engine) ListVariables(ctx context.Context, module string) ([]string, error) {
	fields, err := e.VariableFields(ctx, module)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			continue
		}
		out = append(out, f.FieldKey)
	}
	return out, nil
}

// Expand is the package-level Expand, exposed on Engine for callers that
// only hold an Engine.
func (e *Engine) Expand(template string, ctx Context) string {
	return Expand(template, ctx)
}
