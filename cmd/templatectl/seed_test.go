package main

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/opsdesk-backend/internal/domain/fields"
)

const sampleSeed = `
modules:
  leads:
    fields:
      - key: company_name
        label: 会社名
        type: text
        required: true
        ai_enabled: true
      - key: status
        label: ステータス
        type: select
        options:
          - {value: new, label: 新規}
        variable_enabled: false
      - key: memo
        label: メモ
        visible: false
        validation:
          max_length: 10
    templates:
      - name: 新規リード通知
        type: slack
        content: "{{company_name}}"
      - name: 下書き
        type: email
        content: "件名: x"
        active: false
`

func TestParseSeed(t *testing.T) {
	s, err := parseSeed([]byte(sampleSeed))
	if err != nil {
		t.Fatalf("parseSeed: %v", err)
	}
	defs, err := s.fieldDefinitions()
	if err != nil {
		t.Fatalf("fieldDefinitions: %v", err)
	}
	if len(defs) != 3 {
		t.Fatalf("fields = %d, want 3", len(defs))
	}

	type row struct {
		Key      string
		Type     fields.FieldType
		Order    int
		Required bool
		Visible  bool
		AI       bool
		Variable bool
	}
	var got []row
	for _, d := range defs {
		got = append(got, row{d.FieldKey, d.Type, d.OrderIndex, d.Required, d.Visible, d.AIEnabled, d.VariableEnabled})
	}
	want := []row{
		{"company_name", fields.TypeText, 0, true, true, true, true},
		{"status", fields.TypeSelect, 1, false, true, false, false},
		{"memo", fields.TypeText, 2, false, false, false, true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	if opts := defs[1].OptionList(); len(opts) != 1 || opts[0].Label != "新規" {
		t.Fatalf("options = %+v", opts)
	}
	var v map[string]any
	if err := json.Unmarshal(defs[2].Validation, &v); err != nil {
		t.Fatalf("validation json: %v", err)
	}
	if v["maxLength"] != float64(10) {
		t.Fatalf("validation = %v", v)
	}

	tpls := s.moduleTemplates()
	sort.Slice(tpls, func(i, j int) bool { return tpls[i].Name < tpls[j].Name })
	if len(tpls) != 2 {
		t.Fatalf("templates = %d, want 2", len(tpls))
	}
	if tpls[0].Name != "下書き" || tpls[0].IsActive {
		t.Fatalf("inactive template = %+v", tpls[0])
	}
	if tpls[1].ModuleName != "leads" || !tpls[1].IsActive || tpls[1].TemplateType != "slack" {
		t.Fatalf("active template = %+v", tpls[1])
	}
}

func TestParseSeedErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "modules: {}\n", "no modules"},
		{"bad yaml", "modules: [\n", "parse seed file"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseSeed([]byte(tc.raw))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want containing %q", err, tc.want)
			}
		})
	}

	s, err := parseSeed([]byte("modules:\n  leads:\n    fields:\n      - label: x\n"))
	if err != nil {
		t.Fatalf("parseSeed: %v", err)
	}
	if _, err := s.fieldDefinitions(); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestExpandCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs([]string{"expand", "--template", "{{company_name}}様 {{missing}}", "--data", `{"company_name":"株式会社サンプル"}`})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := strings.TrimSpace(out.String()); !strings.HasPrefix(got, "株式会社サンプル様") {
		t.Fatalf("output = %q", got)
	}
}

func TestExpandCommandRejectsBadData(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"expand", "--template", "x", "--data", "[1]"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected error for non-object data")
	}
}

func TestNotifyPreviewSkipsDatabase(t *testing.T) {
	// Any database access would fail on this driver.
	t.Setenv("DB_DRIVER", "unavailable")

	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs([]string{"notify", "--module", "leads", "--channel", "Email", "--data", `{"company_name":"株式会社サンプル","name":"山田"}`})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var got struct {
		Channel string `json:"channel"`
		Content string `json:"content"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if got.Channel != "email" || got.Subject != "新規リード登録 - 株式会社サンプル" {
		t.Fatalf("unexpected preview %+v", got)
	}
	if !strings.Contains(got.Body, "株式会社サンプルの山田様") || strings.Contains(got.Body, "件名:") {
		t.Fatalf("unexpected body %q", got.Body)
	}

	root = newRootCmd(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"notify", "--module", "leads", "--channel", "fax"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected invalid channel error")
	}
}
