package templating

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExpand(t *testing.T) {
	cases := []struct {
		name string
		tpl  string
		ctx  Context
		want string
	}{
		{"single", "Hello {{name}}", Context{"name": "Sam"}, "Hello Sam"},
		{"unknown token kept", "Hi {{unknown}}", Context{}, "Hi {{unknown}}"},
		{"nil context", "Hi {{unknown}}", nil, "Hi {{unknown}}"},
		{"nil value kept", "{{x}}", Context{"x": nil}, "{{x}}"},
		{"mixed resolution", "{{a}}-{{b}}", Context{"a": "1"}, "1-{{b}}"},
		{"repeated token", "{{a}}{{a}}", Context{"a": "x"}, "xx"},
		{"integral float", "{{amount}}円", Context{"amount": 50000.0}, "50000円"},
		{"fractional float", "{{v}}", Context{"v": 1.5}, "1.5"},
		{"int", "{{v}}", Context{"v": 42}, "42"},
		{"bool", "{{ok}}", Context{"ok": false}, "false"},
		{"list", "{{tags}}", Context{"tags": []any{"a", 1.0, true}}, "a,1,true"},
		{"empty string substitutes", "[{{v}}]", Context{"v": ""}, "[]"},
		{"whitespace not a token", "{{ name }}", Context{"name": "x"}, "{{ name }}"},
		{"unbalanced braces pass", "{{name} {name}}", Context{"name": "x"}, "{{name} {name}}"},
		{"hyphen not word char", "{{first-name}}", Context{"first-name": "x"}, "{{first-name}}"},
		{"non ascii key not token", "{{名前}}", Context{"名前": "x"}, "{{名前}}"},
		{"triple braces", "{{{a}}}", Context{"a": "x"}, "{x}"},
		{"no rescan", "{{a}}", Context{"a": "{{b}}", "b": "deep"}, "{{b}}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Expand(tc.tpl, tc.ctx); got != tc.want {
				t.Fatalf("Expand(%q) = %q, want %q", tc.tpl, got, tc.want)
			}
		})
	}
}

func TestExpand_Idempotent(t *testing.T) {
	ctx := Context{"name": "Sam"}
	once := Expand("Hello {{name}}", ctx)
	twice := Expand(once, ctx)
	if once != "Hello Sam" || twice != once {
		t.Fatalf("expected stable %q, got %q then %q", "Hello Sam", once, twice)
	}
}

func TestExpand_StagedPasses(t *testing.T) {
	tpl := "{{a}}-{{b}}"
	first := Expand(tpl, Context{"a": "1"})
	second := Expand(first, Context{"b": "2"})
	if second != "1-2" {
		t.Fatalf("expected staged expansion 1-2, got %q", second)
	}
}

func TestTokens_OrderAndDuplicates(t *testing.T) {
	got := Tokens("{{b}} {{a}} {{b}} {{ c }}")
	want := []string{"b", "a", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
	if got := Tokens("plain"); len(got) != 0 {
		t.Fatalf("expected no tokens, got %v", got)
	}
}
