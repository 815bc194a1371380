package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/opsdesk-backend/internal/data/repos"
	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
	"github.com/yungbote/opsdesk-backend/internal/observability"
	"github.com/yungbote/opsdesk-backend/internal/platform/ctxutil"
	"github.com/yungbote/opsdesk-backend/internal/platform/dbctx"
	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

type VerificationStatus string

const (
	VerificationPass    VerificationStatus = "pass"
	VerificationFail    VerificationStatus = "fail"
	VerificationWarning VerificationStatus = "warning"
	VerificationPending VerificationStatus = "pending"
)

type VerificationResult struct {
	Module    string             `json:"module"`
	Test      string             `json:"test"`
	Status    VerificationStatus `json:"status"`
	Message   string             `json:"message"`
	Details   any                `json:"details,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

type VerificationSummary struct {
	Pass    int `json:"pass"`
	Fail    int `json:"fail"`
	Warning int `json:"warning"`
}

type ModuleReport struct {
	Module  string               `json:"module"`
	Results []VerificationResult `json:"results"`
	Summary VerificationSummary  `json:"summary"`
}

// VerificationModules lists the verifiable dashboard modules in report
// order.
var VerificationModules = []string{"approvals", "leads", "tasks", "users", "payments", "codes", "templates"}

// VerificationService runs self-checks of a dashboard module against the
// database and the template engine. Check failures are results, not errors.
type VerificationService interface {
	VerifyModule(ctx context.Context, module string) []VerificationResult
	VerifyAll(ctx context.Context) []ModuleReport
}

type verificationService struct {
	log       *logger.Logger
	probe     repos.TableProbe
	fields    repos.FieldDefinitionRepo
	templates repos.ModuleTemplateRepo
	engine    *templating.Engine
	now       func() time.Time
}

func NewVerificationService(log *logger.Logger, probe repos.TableProbe, fields repos.FieldDefinitionRepo, templates repos.ModuleTemplateRepo, store templating.FieldStore) VerificationService {
	return &verificationService{
		log:       log.With("service", "VerificationService"),
		probe:     probe,
		fields:    fields,
		templates: templates,
		engine:    templating.NewEngine(store),
		now:       time.Now,
	}
}

func (s *verificationService) VerifyModule(ctx context.Context, module string) []VerificationResult {
	c := &checker{s: s, ctx: ctx, dbc: dbctx.Context{Ctx: ctx}, module: module}
	switch module {
	case "approvals":
		c.verifyApprovals()
	case "leads":
		c.verifyLeads()
	case "tasks":
		c.verifyTasks()
	case "users":
		c.basic("users", "ユーザーテーブルエラー")
	case "payments":
		c.basic("payment_recipients", "支払先テーブルエラー")
	case "codes":
		c.basic("application_codes", "コードテーブルエラー")
	case "templates":
		c.basic("module_templates", "テンプレートテーブルエラー")
	default:
		c.add("モジュール存在確認", VerificationFail, fmt.Sprintf("未知のモジュール: %s", module), nil)
	}

	m := observability.Current()
	for _, r := range c.results {
		m.IncVerification(metricModule(module), string(r.Status))
	}
	return c.results
}

// VerifyAll checks every module concurrently and reports in module order.
func (s *verificationService) VerifyAll(ctx context.Context) []ModuleReport {
	out := make([]ModuleReport, len(VerificationModules))
	g, gctx := errgroup.WithContext(ctx)
	for i, module := range VerificationModules {
		i, module := i, module
		g.Go(func() error {
			results := s.VerifyModule(gctx, module)
			out[i] = ModuleReport{Module: module, Results: results, Summary: summarize(results)}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func summarize(results []VerificationResult) VerificationSummary {
	var sum VerificationSummary
	for _, r := range results {
		switch r.Status {
		case VerificationPass:
			sum.Pass++
		case VerificationFail:
			sum.Fail++
		case VerificationWarning:
			sum.Warning++
		}
	}
	return sum
}

type checker struct {
	s       *verificationService
	ctx     context.Context
	dbc     dbctx.Context
	module  string
	results []VerificationResult
}

func (c *checker) add(test string, status VerificationStatus, msg string, details any) {
	c.results = append(c.results, VerificationResult{
		Module:    c.module,
		Test:      test,
		Status:    status,
		Message:   msg,
		Details:   details,
		Timestamp: c.s.now(),
	})
}

// table reports whether table is readable, using okMsg on success and
// errPrefix plus the error otherwise.
func (c *checker) table(test, table, okMsg, errPrefix string) {
	n, err := c.s.probe.Count(c.dbc, table)
	if err != nil {
		c.add(test, VerificationFail, fmt.Sprintf("%s: %v", errPrefix, err), nil)
		return
	}
	c.add(test, VerificationPass, okMsg, map[string]any{"rows": n})
}

func (c *checker) basic(table, errPrefix string) {
	c.table("基本機能確認", table, table+"テーブルにアクセス可能", errPrefix)
}

func (c *checker) requiredFields(required []string) {
	defs, err := c.s.fields.List(c.dbc, c.module, templating.FieldFilter{})
	if err != nil {
		c.add("フィールド定義確認", VerificationFail, "フィールド定義取得エラー", err.Error())
		return
	}
	existing := fieldKeys(defs)
	missing := difference(required, existing)
	details := map[string]any{"existing": existing, "missing": missing}
	if len(missing) > 0 {
		c.add("フィールド定義確認", VerificationWarning, "不足フィールド: "+strings.Join(missing, ", "), details)
		return
	}
	c.add("フィールド定義確認", VerificationPass, "必要なフィールド定義が存在", details)
}

func (c *checker) fieldCount(test, label, errMsg string, list func(context.Context, string) ([]*types.FieldDefinition, error)) {
	defs, err := list(c.ctx, c.module)
	if err != nil {
		c.add(test, VerificationFail, errMsg, err.Error())
		return
	}
	status := VerificationPass
	if len(defs) == 0 {
		status = VerificationWarning
	}
	c.add(test, status, fmt.Sprintf("%s: %d個", label, len(defs)), fieldKeys(defs))
}

func (c *checker) requiredTemplates(required []string) {
	got, err := c.s.templates.TypesByModule(c.dbc, c.module)
	if err != nil {
		c.add("テンプレート存在確認", VerificationFail, "テンプレート取得エラー", err.Error())
		return
	}
	existing := make([]string, 0, len(got))
	for _, t := range got {
		existing = append(existing, string(t))
	}
	missing := difference(required, existing)
	details := map[string]any{"existing": existing, "missing": missing}
	if len(missing) > 0 {
		c.add("テンプレート存在確認", VerificationWarning, "不足テンプレート: "+strings.Join(missing, ", "), details)
		return
	}
	c.add("テンプレート存在確認", VerificationPass, "必要なテンプレートが存在", details)
}

func (c *checker) prompt(test, okMsg, errMsg, detailKey string, data templating.Context, pt templating.PromptType) {
	p, err := c.s.engine.GeneratePrompt(c.ctx, c.module, data, pt)
	if err != nil {
		c.add(test, VerificationFail, errMsg, err.Error())
		return
	}
	if p == "" {
		c.add(test, VerificationFail, errMsg, nil)
		return
	}
	c.add(test, VerificationPass, okMsg, map[string]string{detailKey: preview(p)})
}

func (c *checker) notification(test, okMsg, errMsg string, data templating.Context, ch templating.Channel) {
	out, err := c.s.engine.GenerateNotification(c.module, data, ch)
	if err != nil {
		c.add(test, VerificationFail, errMsg, err.Error())
		return
	}
	c.add(test, VerificationPass, okMsg, map[string]string{"template": preview(out)})
}

var approvalSample = templating.Context{
	"category":    "expense",
	"purpose":     "出張費精算",
	"amount":      50000,
	"destination": "大阪",
	"description": "営業会議のための出張",
}

func (c *checker) verifyApprovals() {
	c.table("テーブル存在確認", "approvals", "approvalsテーブルにアクセス可能", "テーブルアクセスエラー")
	c.requiredFields([]string{"category", "purpose", "amount", "status"})
	c.fieldCount("AI対応フィールド確認", "AI対応フィールド", "AI対応フィールド取得エラー", c.s.engine.AIFields)
	c.requiredTemplates([]string{"ai_prompt", "slack", "email", "pdf"})

	statuses := []any{"pending", "approved", "rejected"}
	if n, err := c.s.probe.CountWhere(c.dbc, "approvals", "status", statuses...); err != nil {
		c.add("ステータス遷移テスト", VerificationFail, "ステータス確認エラー", err.Error())
	} else {
		c.add("ステータス遷移テスト", VerificationPass, "有効なステータス値を確認", map[string]any{"statuses": statuses, "rows": n})
	}

	c.fieldCount("動的フォーム生成テスト", "変数対応フィールド", "動的フォーム生成エラー", c.s.engine.VariableFields)
	c.prompt("AI出力テスト", "AIプロンプト生成成功", "AI出力生成エラー", "prompt", approvalSample, templating.PromptSummary)
	c.notification("PDF出力テスト", "PDFテンプレート生成成功", "PDF出力生成エラー", approvalSample, templating.ChannelEmail)
}

func (c *checker) verifyLeads() {
	c.table("CRUD操作テスト", "leads", "leadsテーブルにアクセス可能", "CRUDアクセスエラー")
	c.add("ステータス遷移確認", VerificationPass, "リードステータス遷移パターン確認", []string{"new", "contacted", "qualified", "lost"})

	lead := templating.Context{
		"name":          "山田太郎",
		"company_name":  "株式会社サンプル",
		"status":        "contacted",
		"contact_email": "yamada@sample.com",
	}
	withNotes := templating.Context{"notes": "新規サービスに興味を示している"}
	for k, v := range lead {
		withNotes[k] = v
	}
	c.prompt("AI要約生成テスト", "AI要約生成成功", "AI要約生成エラー", "summary", withNotes, templating.PromptSummary)
	c.notification("Slack通知テンプレート確認", "Slack通知テンプレート生成成功", "Slack通知テンプレート生成エラー", lead, templating.ChannelSlack)

	if n, err := c.s.probe.CountWhere(c.dbc, "users", "status", "active"); err != nil {
		c.add("担当者割当確認", VerificationFail, "担当者取得エラー", err.Error())
	} else {
		status := VerificationPass
		if n == 0 {
			status = VerificationWarning
		}
		c.add("担当者割当確認", status, fmt.Sprintf("アクティブユーザー: %d人", n), nil)
	}

	if _, err := c.s.probe.CountWhere(c.dbc, "leads", "status", "new", "contacted"); err != nil {
		c.add("検索機能確認", VerificationFail, "検索機能エラー", err.Error())
	} else {
		c.add("検索機能確認", VerificationPass, "検索クエリ実行可能", nil)
	}

	if uid := ctxutil.UserID(c.ctx); uid != nil {
		c.add("RLS確認", VerificationPass, "認証ユーザーでアクセス中", map[string]string{"userId": uid.String()})
	} else {
		c.add("RLS確認", VerificationWarning, "未認証状態", nil)
	}
}

func (c *checker) verifyTasks() {
	c.table("日報テーブル確認", "daily_reports", "daily_reportsテーブルにアクセス可能", "日報テーブルエラー")
	c.table("タスクテーブル確認", "tasks", "tasksテーブルにアクセス可能", "タスクテーブルエラー")
	c.add("ステータス変更確認", VerificationPass, "タスクステータス遷移パターン確認", []string{"todo", "in_progress", "done"})

	expanded := templating.Expand("タスク: {{title}} (優先度: {{priority}}, 期限: {{due_date}})", templating.Context{
		"title":    "システム開発タスク",
		"status":   "in_progress",
		"priority": "high",
		"due_date": "2025-07-15",
		"notes":    "重要なシステム機能の実装",
	})
	if strings.Contains(expanded, "システム開発タスク") {
		c.add("変数展開テスト", VerificationPass, "変数展開成功", map[string]string{"expanded": expanded})
	} else {
		c.add("変数展開テスト", VerificationFail, "変数展開失敗", map[string]string{"expanded": expanded})
	}

	c.prompt("AI提案テスト", "AI提案生成成功", "AI提案生成エラー", "suggestion", templating.Context{
		"title":    "システム開発",
		"due_date": "2025-07-15",
	}, templating.PromptSuggestion)

	if n, err := c.s.probe.CountWhere(c.dbc, "tasks", "report_id"); err != nil {
		c.add("関連付けテスト", VerificationFail, "関連付けテストエラー", err.Error())
	} else {
		c.add("関連付けテスト", VerificationPass, "日報-タスク関連付けクエリ実行可能", map[string]any{"linked_tasks": n})
	}
}
