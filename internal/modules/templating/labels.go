package templating

// Module names as stored in field_definitions.module_name.
const (
	ModuleLeads             = "leads"
	ModuleTasks             = "tasks"
	ModuleApprovals         = "approvals"
	ModuleUsers             = "users"
	ModulePaymentRecipients = "payment_recipients"
	ModuleApplicationCodes  = "application_codes"
	ModuleNextcloudFiles    = "nextcloud_files"
)

var moduleLabels = map[string]string{
	ModuleLeads:             "リード",
	ModuleTasks:             "タスク",
	ModuleApprovals:         "承認申請",
	ModuleUsers:             "ユーザー",
	ModulePaymentRecipients: "支払先",
	ModuleApplicationCodes:  "アプリケーションコード",
	ModuleNextcloudFiles:    "ファイル",
}

// Modules lists the modules with built-in labels and notification templates.
func Modules() []string {
	return []string{
		ModuleLeads,
		ModuleTasks,
		ModuleApprovals,
		ModuleUsers,
		ModulePaymentRecipients,
		ModuleApplicationCodes,
		ModuleNextcloudFiles,
	}
}

// ModuleLabel returns the display name of module, or module itself when it
// has none.
func ModuleLabel(module string) string {
	if l, ok := moduleLabels[module]; ok {
		return l
	}
	return module
}
