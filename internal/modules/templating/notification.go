package templating

import (
	"regexp"
	"strings"
)

type Channel string

const (
	ChannelSlack Channel = "slack"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelSlack, ChannelEmail, ChannelSMS:
		return true
	}
	return false
}

type notificationKey struct {
	Module  string
	Channel Channel
}

var notificationTemplates = map[notificationKey]string{
	{ModuleLeads, ChannelSlack}:             "🎯 新しいリード: {{company_name}} - {{name}}\nステータス: {{status}}\n担当者: {{assigned_to}}",
	{ModuleTasks, ChannelSlack}:             "📋 タスク更新: {{title}}\nステータス: {{status}}\n期限: {{due_date}}\n優先度: {{priority}}",
	{ModuleApprovals, ChannelSlack}:         "📝 承認申請: {{category}} - {{purpose}}\n金額: {{amount}}円\n申請者: {{applicant_name}}",
	{ModuleUsers, ChannelSlack}:             "👤 ユーザー更新: {{name}} ({{employee_id}})\n役割: {{role}}\nステータス: {{status}}",
	{ModulePaymentRecipients, ChannelSlack}: "💰 支払先登録: {{recipient_name}}\n銀行: {{bank_name}} {{branch_name}}",
	{ModuleApplicationCodes, ChannelSlack}:  "🏷️ コード更新: {{code}} - {{label}}\nカテゴリ: {{category}}",
	{ModuleNextcloudFiles, ChannelSlack}:    "📎 ファイル追加: {{file_name}}\n関連: {{linked_type}}",

	{ModuleLeads, ChannelEmail}:             "件名: 新規リード登録 - {{company_name}}\n\n{{company_name}}の{{name}}様より新規お問い合わせをいただきました。\n\nステータス: {{status}}\n担当者: {{assigned_to}}\n備考: {{notes}}",
	{ModuleTasks, ChannelEmail}:             "件名: タスク更新通知 - {{title}}\n\nタスクが更新されました。\n\nタスク名: {{title}}\nステータス: {{status}}\n期限: {{due_date}}\n優先度: {{priority}}\n\n詳細: {{notes}}",
	{ModuleApprovals, ChannelEmail}:         "件名: 承認申請 - {{category}}\n\n承認申請が提出されました。\n\n種類: {{category}}\n目的: {{purpose}}\n金額: {{amount}}円\n日付: {{date}}\n\n詳細: {{description}}",
	{ModuleUsers, ChannelEmail}:             "件名: ユーザーアカウント更新 - {{name}}\n\nユーザーアカウントが更新されました。\n\n名前: {{name}}\n従業員ID: {{employee_id}}\n役割: {{role}}\nステータス: {{status}}",
	{ModulePaymentRecipients, ChannelEmail}: "件名: 支払先登録完了 - {{recipient_name}}\n\n新しい支払先が登録されました。\n\n受取人: {{recipient_name}}\n銀行: {{bank_name}}\n支店: {{branch_name}}\n口座番号: {{account_number}}",
	{ModuleApplicationCodes, ChannelEmail}:  "件名: アプリケーションコード更新 - {{code}}\n\nコードが更新されました。\n\nコード: {{code}}\nラベル: {{label}}\nカテゴリ: {{category}}\n説明: {{description}}",
	{ModuleNextcloudFiles, ChannelEmail}:    "件名: ファイルアップロード完了 - {{file_name}}\n\nファイルがアップロードされました。\n\nファイル名: {{file_name}}\n関連タイプ: {{linked_type}}\nMIMEタイプ: {{mime_type}}",

	{ModuleLeads, ChannelSMS}:             "新規リード: {{company_name}} - {{name}} ({{status}})",
	{ModuleTasks, ChannelSMS}:             "タスク更新: {{title}} - {{status}} (期限: {{due_date}})",
	{ModuleApprovals, ChannelSMS}:         "承認申請: {{category}} - {{purpose}} ({{amount}}円)",
	{ModuleUsers, ChannelSMS}:             "ユーザー更新: {{name}} - {{role}}",
	{ModulePaymentRecipients, ChannelSMS}: "支払先登録: {{recipient_name}} - {{bank_name}}",
	{ModuleApplicationCodes, ChannelSMS}:  "コード更新: {{code}} - {{label}}",
	{ModuleNextcloudFiles, ChannelSMS}:    "ファイル追加: {{file_name}}",
}

// NotificationTemplate returns the raw built-in template for the pair or a
// *NotFoundError.
func NotificationTemplate(module string, channel Channel) (string, error) {
	tpl, ok := notificationTemplates[notificationKey{Module: module, Channel: channel}]
	if !ok {
		return "", &NotFoundError{Module: module, Channel: channel}
	}
	return tpl, nil
}

// GenerateNotification expands the built-in (module, channel) template with
// data. A missing pair is a *NotFoundError and never a partial string.
func (e *Engine) GenerateNotification(module string, data Context, channel Channel) (string, error) {
	tpl, err := NotificationTemplate(module, channel)
	if err != nil {
		return "", err
	}
	return Expand(tpl, data), nil
}

const DefaultEmailSubject = "通知"

var (
	emailSubjectPattern = regexp.MustCompile(`(?m)^件名:\s*(.+)$`)
	emailSubjectLine    = regexp.MustCompile(`(?m)^件名:\s*.+$`)
)

// SplitEmail separates the first "件名:" line of an expanded email
// template from its body.
func SplitEmail(content string) (subject, body string) {
	subject = DefaultEmailSubject
	if m := emailSubjectPattern.FindStringSubmatch(content); m != nil {
		subject = strings.TrimSpace(m[1])
	}
	loc := emailSubjectLine.FindStringIndex(content)
	if loc == nil {
		return subject, strings.TrimSpace(content)
	}
	body = content[:loc[0]] + content[loc[1]:]
	return subject, strings.TrimSpace(body)
}

var defaultTemplateNames = map[notificationKey]string{
	{ModuleLeads, ChannelSlack}:     "Slack通知",
	{ModuleLeads, ChannelEmail}:     "フォローアップメール",
	{ModuleLeads, ChannelSMS}:       "リード通知",
	{ModuleTasks, ChannelSlack}:     "タスク更新通知",
	{ModuleTasks, ChannelEmail}:     "タスク完了報告",
	{ModuleTasks, ChannelSMS}:       "タスク通知",
	{ModuleApprovals, ChannelSlack}: "承認通知",
	{ModuleApprovals, ChannelEmail}: "承認完了メール",
	{ModuleApprovals, ChannelSMS}:   "承認通知",
}

// DefaultTemplateName is the stored template name bulk sends look up for
// the pair, "<channel>通知" when the module has no preset.
func DefaultTemplateName(module string, channel Channel) string {
	if n, ok := defaultTemplateNames[notificationKey{Module: module, Channel: channel}]; ok {
		return n
	}
	return string(channel) + "通知"
}
