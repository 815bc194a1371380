package templating

import (
	"context"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
)

// FieldFilter narrows a field listing. Nil pointers do not filter.
type FieldFilter struct {
	AIEnabled       *bool
	VariableEnabled *bool
	Visible         *bool
}

// FieldStore is the read side of field definitions the engine depends on.
// ListFields must order by order_index and return an empty slice, not an
// error, when a module has no definitions.
type FieldStore interface {
	ListFields(ctx context.Context, moduleName string, filter FieldFilter) ([]*types.FieldDefinition, error)
}

func boolPtr(b bool) *bool { return &b }

// AIFieldFilter selects fields that feed prompt generation.
func AIFieldFilter() FieldFilter {
	return FieldFilter{AIEnabled: boolPtr(true), Visible: boolPtr(true)}
}

// VariableFieldFilter selects fields usable as template tokens.
func VariableFieldFilter() FieldFilter {
	return FieldFilter{VariableEnabled: boolPtr(true), Visible: boolPtr(true)}
}

// VisibleFieldFilter selects fields rendered on record forms.
func VisibleFieldFilter() FieldFilter {
	return FieldFilter{Visible: boolPtr(true)}
}

// Matches reports whether f passes the filter. Stores that cannot filter
// server-side use it to filter in memory.
func (ff FieldFilter) Matches(f *types.FieldDefinition) bool {
	if f == nil {
		return false
	}
	if ff.AIEnabled != nil && f.AIEnabled != *ff.AIEnabled {
		return false
	}
	if ff.VariableEnabled != nil && f.VariableEnabled != *ff.VariableEnabled {
		return false
	}
	if ff.Visible != nil && f.Visible != *ff.Visible {
		return false
	}
	return true
}
