package templating

import (
	"context"
	"sort"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
)

type fakeStore struct {
	fields map[string][]*types.FieldDefinition
	err    error
	calls  int
}

func (s *fakeStore) ListFields(ctx context.Context, module string, filter FieldFilter) ([]*types.FieldDefinition, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := []*types.FieldDefinition{}
	for _, f := range s.fields[module] {
		if filter.Matches(f) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func field(key, label string, typ types.FieldType, order int) *types.FieldDefinition {
	return &types.FieldDefinition{
		ModuleName:      "leads",
		FieldKey:        key,
		Label:           label,
		Type:            typ,
		Visible:         true,
		AIEnabled:       true,
		VariableEnabled: true,
		OrderIndex:      order,
	}
}
