package templating

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	types "github.com/yungbote/opsdesk-backend/internal/domain"
)

func variableStore() *fakeStore {
	notVar := field("internal_code", "内部コード", types.FieldTypeText, 3)
	notVar.VariableEnabled = false
	return &fakeStore{fields: map[string][]*types.FieldDefinition{
		"leads": {
			field("status", "ステータス", types.FieldTypeText, 2),
			field("name", "名前", types.FieldTypeText, 1),
			notVar,
		},
	}}
}

func TestValidate(t *testing.T) {
	e := NewEngine(variableStore())
	cases := []struct {
		name        string
		tpl         string
		wantValid   bool
		wantMissing []string
	}{
		{"missing token", "{{name}} is {{unknown}}", false, []string{"unknown"}},
		{"clean template", "{{name}}: {{status}}", true, []string{}},
		{"no tokens", "plain text", true, []string{}},
		{"duplicates kept", "{{x}} {{name}} {{x}}", false, []string{"x", "x"}},
		{"non-variable field", "{{internal_code}}", false, []string{"internal_code"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Validate(context.Background(), tc.tpl, "leads")
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if got.IsValid != tc.wantValid {
				t.Fatalf("IsValid = %v, want %v", got.IsValid, tc.wantValid)
			}
			if diff := cmp.Diff(tc.wantMissing, got.MissingVariables); diff != "" {
				t.Fatalf("missing mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]string{"name", "status"}, got.AvailableVariables); diff != "" {
				t.Fatalf("available mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_UnknownModuleHasNoVariables(t *testing.T) {
	e := NewEngine(variableStore())
	got, err := e.Validate(context.Background(), "{{name}}", "nope")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.IsValid || len(got.AvailableVariables) != 0 {
		t.Fatalf("expected invalid with no variables, got %+v", got)
	}
}

func TestListVariables_StoreError(t *testing.T) {
	boom := errors.New("timeout")
	e := NewEngine(&fakeStore{err: boom})
	if _, err := e.ListVariables(context.Background(), "leads"); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if _, err := e.Validate(context.Background(), "{{a}}", "leads"); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
