package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/platform/ctxutil"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

func newTestVerification(probe *fakeProbe, store *fakeStore, tpl *fakeTemplateRepo) *verificationService {
	s := NewVerificationService(logger.Nop(), probe, &fakeFieldRepo{store: store}, tpl, store).(*verificationService)
	s.now = func() time.Time { return time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC) }
	return s
}

func statuses(results []VerificationResult) map[string]VerificationStatus {
	out := map[string]VerificationStatus{}
	for _, r := range results {
		out[r.Test] = r.Status
	}
	return out
}

func find(t *testing.T, results []VerificationResult, test string) VerificationResult {
	t.Helper()
	for _, r := range results {
		if r.Test == test {
			return r
		}
	}
	t.Fatalf("no result for %q in %+v", test, results)
	return VerificationResult{}
}

func TestVerifyModule_ApprovalsHealthy(t *testing.T) {
	store := &fakeStore{fields: map[string][]*types.FieldDefinition{
		"approvals": {
			testField("approvals", "category", "種類", 1),
			testField("approvals", "purpose", "目的", 2),
			testField("approvals", "amount", "金額", 3),
			testField("approvals", "status", "ステータス", 4),
		},
	}}
	tpl := &fakeTemplateRepo{kinds: map[string][]types.TemplateType{
		"approvals": {types.TemplateTypeAIPrompt, types.TemplateTypeEmail, types.TemplateTypePDF, types.TemplateTypeSlack},
	}}
	probe := &fakeProbe{counts: map[string]int64{"approvals": 3, "approvals.status": 3}}
	s := newTestVerification(probe, store, tpl)

	results := s.VerifyModule(context.Background(), "approvals")
	want := map[string]VerificationStatus{
		"テーブル存在確認":    VerificationPass,
		"フィールド定義確認":   VerificationPass,
		"AI対応フィールド確認": VerificationPass,
		"テンプレート存在確認":  VerificationPass,
		"ステータス遷移テスト":  VerificationPass,
		"動的フォーム生成テスト": VerificationPass,
		"AI出力テスト":     VerificationPass,
		"PDF出力テスト":    VerificationPass,
	}
	if diff := cmp.Diff(want, statuses(results)); diff != "" {
		t.Fatalf("statuses mismatch (-want +got):\n%s", diff)
	}
	if len(results) != 8 {
		t.Fatalf("expected 8 results, got %d", len(results))
	}
	if got := find(t, results, "AI対応フィールド確認").Message; got != "AI対応フィールド: 4個" {
		t.Fatalf("unexpected message %q", got)
	}
	ai := find(t, results, "AI出力テスト")
	prompt := ai.Details.(map[string]string)["prompt"]
	if !strings.HasSuffix(prompt, "...") || !strings.Contains(prompt, "承認申請") {
		t.Fatalf("unexpected prompt preview %q", prompt)
	}
	for _, r := range results {
		if r.Module != "approvals" || r.Timestamp.IsZero() {
			t.Fatalf("result missing module or timestamp: %+v", r)
		}
	}
}

func TestVerifyModule_ApprovalsDegraded(t *testing.T) {
	store := &fakeStore{fields: map[string][]*types.FieldDefinition{
		"approvals": {testField("approvals", "category", "種類", 1)},
	}}
	store.fields["approvals"][0].AIEnabled = false
	store.fields["approvals"][0].VariableEnabled = false
	tpl := &fakeTemplateRepo{kinds: map[string][]types.TemplateType{
		"approvals": {types.TemplateTypeSlack},
	}}
	probe := &fakeProbe{errs: map[string]error{"approvals": errBoom}}
	s := newTestVerification(probe, store, tpl)

	results := s.VerifyModule(context.Background(), "approvals")

	table := find(t, results, "テーブル存在確認")
	if table.Status != VerificationFail || table.Message != "テーブルアクセスエラー: boom" {
		t.Fatalf("unexpected table result %+v", table)
	}
	fields := find(t, results, "フィールド定義確認")
	if fields.Status != VerificationWarning || fields.Message != "不足フィールド: purpose, amount, status" {
		t.Fatalf("unexpected field result %+v", fields)
	}
	tpls := find(t, results, "テンプレート存在確認")
	if tpls.Status != VerificationWarning || tpls.Message != "不足テンプレート: ai_prompt, email, pdf" {
		t.Fatalf("unexpected template result %+v", tpls)
	}
	if got := find(t, results, "AI対応フィールド確認"); got.Status != VerificationWarning || got.Message != "AI対応フィールド: 0個" {
		t.Fatalf("unexpected ai field result %+v", got)
	}
	if got := find(t, results, "動的フォーム生成テスト"); got.Status != VerificationWarning {
		t.Fatalf("unexpected form result %+v", got)
	}
	if got := find(t, results, "ステータス遷移テスト"); got.Status != VerificationFail || got.Message != "ステータス確認エラー" {
		t.Fatalf("unexpected status result %+v", got)
	}
}

func TestVerifyModule_Leads(t *testing.T) {
	probe := &fakeProbe{counts: map[string]int64{"leads": 2, "users.status": 0}}
	s := newTestVerification(probe, &fakeStore{}, &fakeTemplateRepo{})

	results := s.VerifyModule(context.Background(), "leads")
	want := map[string]VerificationStatus{
		"CRUD操作テスト":       VerificationPass,
		"ステータス遷移確認":       VerificationPass,
		"AI要約生成テスト":       VerificationPass,
		"Slack通知テンプレート確認": VerificationPass,
		"担当者割当確認":         VerificationWarning,
		"検索機能確認":          VerificationPass,
		"RLS確認":           VerificationWarning,
	}
	if diff := cmp.Diff(want, statuses(results)); diff != "" {
		t.Fatalf("statuses mismatch (-want +got):\n%s", diff)
	}
	if got := find(t, results, "担当者割当確認").Message; got != "アクティブユーザー: 0人" {
		t.Fatalf("unexpected message %q", got)
	}
	slack := find(t, results, "Slack通知テンプレート確認").Details.(map[string]string)["template"]
	if !strings.Contains(slack, "株式会社サンプル") {
		t.Fatalf("expected company in slack preview, got %q", slack)
	}

	ctx := ctxutil.WithUserID(context.Background(), uuid.New())
	results = s.VerifyModule(ctx, "leads")
	if got := find(t, results, "RLS確認"); got.Status != VerificationPass || got.Message != "認証ユーザーでアクセス中" {
		t.Fatalf("unexpected rls result %+v", got)
	}
}

func TestVerifyModule_Tasks(t *testing.T) {
	probe := &fakeProbe{
		counts: map[string]int64{"tasks.report_id": 1},
		errs:   map[string]error{"daily_reports": errBoom},
	}
	s := newTestVerification(probe, &fakeStore{}, &fakeTemplateRepo{})

	results := s.VerifyModule(context.Background(), "tasks")
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	if got := find(t, results, "日報テーブル確認"); got.Status != VerificationFail || got.Message != "日報テーブルエラー: boom" {
		t.Fatalf("unexpected report result %+v", got)
	}
	expand := find(t, results, "変数展開テスト")
	wantExpanded := "タスク: システム開発タスク (優先度: high, 期限: 2025-07-15)"
	if expand.Status != VerificationPass || expand.Details.(map[string]string)["expanded"] != wantExpanded {
		t.Fatalf("unexpected expand result %+v", expand)
	}
	if got := find(t, results, "関連付けテスト"); got.Status != VerificationPass {
		t.Fatalf("unexpected link result %+v", got)
	}
}

func TestVerifyModule_BasicAndUnknown(t *testing.T) {
	probe := &fakeProbe{errs: map[string]error{"payment_recipients": errBoom}}
	s := newTestVerification(probe, &fakeStore{}, &fakeTemplateRepo{})

	cases := []struct {
		module  string
		test    string
		status  VerificationStatus
		message string
	}{
		{"users", "基本機能確認", VerificationPass, "usersテーブルにアクセス可能"},
		{"payments", "基本機能確認", VerificationFail, "支払先テーブルエラー: boom"},
		{"codes", "基本機能確認", VerificationPass, "application_codesテーブルにアクセス可能"},
		{"templates", "基本機能確認", VerificationPass, "module_templatesテーブルにアクセス可能"},
		{"nope", "モジュール存在確認", VerificationFail, "未知のモジュール: nope"},
	}
	for _, tc := range cases {
		t.Run(tc.module, func(t *testing.T) {
			results := s.VerifyModule(context.Background(), tc.module)
			if len(results) != 1 {
				t.Fatalf("expected 1 result, got %d", len(results))
			}
			r := results[0]
			if r.Test != tc.test || r.Status != tc.status || r.Message != tc.message {
				t.Fatalf("got %+v", r)
			}
		})
	}
}

func TestVerifyAll_Order(t *testing.T) {
	s := newTestVerification(&fakeProbe{}, &fakeStore{}, &fakeTemplateRepo{})
	reports := s.VerifyAll(context.Background())

	var got []string
	for _, r := range reports {
		got = append(got, r.Module)
		if r.Summary.Pass+r.Summary.Fail+r.Summary.Warning != len(r.Results) {
			t.Fatalf("summary does not add up for %s: %+v", r.Module, r.Summary)
		}
	}
	if diff := cmp.Diff(VerificationModules, got); diff != "" {
		t.Fatalf("module order mismatch (-want +got):\n%s", diff)
	}
}
