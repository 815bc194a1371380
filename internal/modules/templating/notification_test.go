package templating

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateNotification_Expands(t *testing.T) {
	e := NewEngine(&fakeStore{})
	got, err := e.GenerateNotification(ModuleLeads, Context{
		"company_name": "株式会社サンプル",
		"name":         "山田太郎",
		"status":       "new",
	}, ChannelSMS)
	if err != nil {
		t.Fatalf("GenerateNotification: %v", err)
	}
	if got != "新規リード: 株式会社サンプル - 山田太郎 (new)" {
		t.Fatalf("unexpected sms %q", got)
	}

	got, err = e.GenerateNotification(ModuleApprovals, Context{"amount": 50000.0}, ChannelSlack)
	if err != nil {
		t.Fatalf("GenerateNotification: %v", err)
	}
	if !strings.Contains(got, "金額: 50000円") || !strings.Contains(got, "{{purpose}}") {
		t.Fatalf("expected partial expansion, got %q", got)
	}
}

func TestGenerateNotification_NotFound(t *testing.T) {
	e := NewEngine(&fakeStore{})
	got, err := e.GenerateNotification("nonexistent_module", Context{}, ChannelSlack)
	if err == nil {
		t.Fatalf("expected error")
	}
	if got != "" {
		t.Fatalf("expected no partial output, got %q", got)
	}
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Module != "nonexistent_module" || nf.Channel != ChannelSlack {
		t.Fatalf("expected NotFoundError naming the pair, got %#v", err)
	}
	if err.Error() != "Template not found for nonexistent_module - slack" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestNotificationTemplate_EveryModuleEveryChannel(t *testing.T) {
	for _, m := range Modules() {
		for _, ch := range []Channel{ChannelSlack, ChannelEmail, ChannelSMS} {
			tpl, err := NotificationTemplate(m, ch)
			if err != nil {
				t.Fatalf("missing template %s/%s: %v", m, ch, err)
			}
			if ch == ChannelEmail && !strings.HasPrefix(tpl, "件名: ") {
				t.Fatalf("email template %s lacks subject line", m)
			}
		}
	}
}

func TestSplitEmail(t *testing.T) {
	subject, body := SplitEmail("件名: 承認申請 - 出張費\n\n承認申請が提出されました。\n")
	if subject != "承認申請 - 出張費" {
		t.Fatalf("unexpected subject %q", subject)
	}
	if body != "承認申請が提出されました。" {
		t.Fatalf("unexpected body %q", body)
	}

	subject, body = SplitEmail("  本文のみ  ")
	if subject != DefaultEmailSubject || body != "本文のみ" {
		t.Fatalf("expected default subject, got %q / %q", subject, body)
	}

	subject, body = SplitEmail("前文\n件名:  二行目  \n本文")
	if subject != "二行目" || body != "前文\n\n本文" {
		t.Fatalf("expected subject from any line, got %q / %q", subject, body)
	}
}

func TestDefaultTemplateName(t *testing.T) {
	cases := []struct {
		module string
		ch     Channel
		want   string
	}{
		{ModuleLeads, ChannelEmail, "フォローアップメール"},
		{ModuleTasks, ChannelSlack, "タスク更新通知"},
		{ModuleApprovals, ChannelSMS, "承認通知"},
		{ModuleUsers, ChannelSlack, "slack通知"},
	}
	for _, tc := range cases {
		if got := DefaultTemplateName(tc.module, tc.ch); got != tc.want {
			t.Fatalf("DefaultTemplateName(%s,%s) = %q, want %q", tc.module, tc.ch, got, tc.want)
		}
	}
}
