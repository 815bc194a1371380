package templating

// SampleValue is the placeholder shown for key when previewing a template.
func SampleValue(key string) string {
	switch key {
	case "name", "contact_name":
		return "山田太郎"
	case "company_name":
		return "株式会社サンプル"
	case "email", "contact_email":
		return "yamada@example.com"
	case "phone", "contact_phone":
		return "03-1234-5678"
	case "title":
		return "サンプルタスク"
	case "status":
		return "進行中"
	case "priority":
		return "高"
	case "amount":
		return "50000"
	case "due_date", "date":
		return "2025-07-15"
	default:
		return "サンプル" + key
	}
}

// SampleContext builds preview data for every key in variables.
func SampleContext(variables []string) Context {
	out := make(Context, len(variables))
	for _, v := range variables {
		out[v] = SampleValue(v)
	}
	return out
}
