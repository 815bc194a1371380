package templating

import (
	"context"
	"errors"
	"strings"
	"testing"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
)

func selectField(t *testing.T) *types.FieldDefinition {
	t.Helper()
	f := field("status", "ステータス", types.FieldTypeSelect, 2)
	if err := f.SetOptions([]types.FieldOption{{Value: "new", Label: "新規"}, {Value: "blank", Label: ""}}); err != nil {
		t.Fatalf("set options: %v", err)
	}
	return f
}

func TestGeneratePrompt_SelectLabel(t *testing.T) {
	store := &fakeStore{fields: map[string][]*types.FieldDefinition{
		"leads": {selectField(t)},
	}}
	e := NewEngine(store)

	got, err := e.GeneratePrompt(context.Background(), "leads", Context{"status": "new"}, PromptSummary)
	if err != nil {
		t.Fatalf("GeneratePrompt: %v", err)
	}
	if !strings.Contains(got, "ステータス: 新規") || strings.Contains(got, ": new") {
		t.Fatalf("expected option label in prompt, got %q", got)
	}

	got, err = e.GeneratePrompt(context.Background(), "leads", Context{"status": "lost"}, PromptSummary)
	if err != nil {
		t.Fatalf("GeneratePrompt: %v", err)
	}
	if !strings.Contains(got, "ステータス: lost") {
		t.Fatalf("expected raw value fallback, got %q", got)
	}

	got, _ = e.GeneratePrompt(context.Background(), "leads", Context{"status": "blank"}, PromptSummary)
	if !strings.Contains(got, "ステータス: blank") {
		t.Fatalf("expected raw value for empty label, got %q", got)
	}
}

func TestGeneratePrompt_NumericOptionValues(t *testing.T) {
	f := field("priority", "優先度", types.FieldTypeSelect, 1)
	f.Options = []byte(`[{"value":1,"label":"高"},{"value":2,"label":"中"},{"value":true,"label":"要対応"}]`)
	if opts := f.OptionList(); len(opts) != 3 {
		t.Fatalf("numeric option values must decode, got %v", opts)
	}
	store := &fakeStore{fields: map[string][]*types.FieldDefinition{"tasks": {f}}}
	e := NewEngine(store)

	cases := []struct {
		name string
		in   any
		want string
	}{
		{name: "number", in: float64(2), want: "優先度: 中"},
		{name: "numeric string", in: "1", want: "優先度: 高"},
		{name: "bool", in: true, want: "優先度: 要対応"},
		{name: "unknown", in: float64(9), want: "優先度: 9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.GeneratePrompt(context.Background(), "tasks", Context{"priority": tc.in}, PromptSummary)
			if err != nil {
				t.Fatalf("GeneratePrompt: %v", err)
			}
			if !strings.Contains(got, tc.want) {
				t.Fatalf("expected %q in %q", tc.want, got)
			}
		})
	}
}

func TestGeneratePrompt_FormatAndOrdering(t *testing.T) {
	hidden := field("secret", "秘密", types.FieldTypeText, 0)
	hidden.Visible = false
	noAI := field("memo", "メモ", types.FieldTypeText, 1)
	noAI.AIEnabled = false
	store := &fakeStore{fields: map[string][]*types.FieldDefinition{
		"leads": {
			field("vip", "VIP", types.FieldTypeBoolean, 5),
			field("name", "名前", types.FieldTypeText, 1),
			field("amount", "金額", types.FieldTypeNumber, 3),
			field("missing", "未入力", types.FieldTypeText, 4),
			hidden,
			noAI,
		},
	}}
	e := NewEngine(store)
	data := Context{"name": "山田", "amount": 50000.0, "vip": false, "missing": nil, "secret": "x", "memo": "y"}

	got, err := e.GeneratePrompt(context.Background(), "leads", data, PromptAnalysis)
	if err != nil {
		t.Fatalf("GeneratePrompt: %v", err)
	}
	want := "以下のリード情報を分析し、改善点や注意点を提案してください：\n\n名前: 山田\n金額: 50000\nVIP: いいえ"
	if got != want {
		t.Fatalf("prompt mismatch\nwant %q\ngot  %q", want, got)
	}
	if store.calls != 1 {
		t.Fatalf("expected exactly one store read, got %d", store.calls)
	}
}

func TestGeneratePrompt_Fallbacks(t *testing.T) {
	store := &fakeStore{fields: map[string][]*types.FieldDefinition{
		"ocr_projects": {field("vip", "VIP", types.FieldTypeBoolean, 0)},
	}}
	e := NewEngine(store)

	got, err := e.GeneratePrompt(context.Background(), "ocr_projects", Context{"vip": "yes"}, PromptType("poem"))
	if err != nil {
		t.Fatalf("GeneratePrompt: %v", err)
	}
	want := "以下のocr_projects情報を要約してください：\n\nVIP: はい"
	if got != want {
		t.Fatalf("prompt mismatch\nwant %q\ngot  %q", want, got)
	}

	got, _ = e.GeneratePrompt(context.Background(), "tasks", Context{}, PromptSuggestion)
	if got != "以下のタスク情報に基づいて、次のアクションを提案してください：\n\n" {
		t.Fatalf("unexpected empty-data prompt %q", got)
	}
}

func TestGeneratePrompt_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	e := NewEngine(&fakeStore{err: boom})
	if _, err := e.GeneratePrompt(context.Background(), "leads", Context{}, PromptSummary); err != boom {
		t.Fatalf("expected store error unchanged, got %v", err)
	}
}

func TestParsePromptType(t *testing.T) {
	cases := map[string]PromptType{
		"analysis":    PromptAnalysis,
		" Suggestion": PromptSuggestion,
		"":            PromptSummary,
		"other":       PromptSummary,
	}
	for in, want := range cases {
		if got := ParsePromptType(in); got != want {
			t.Fatalf("ParsePromptType(%q) = %q, want %q", in, got, want)
		}
	}
}
