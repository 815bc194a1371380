package notifications

// DeliveryConfig says where one channel's notification goes. Recipients are
// email addresses for email, phone numbers for sms, and unused for slack.
type DeliveryConfig struct {
	Channel    string   `json:"channel" yaml:"channel"`
	Recipients []string `json:"recipients,omitempty" yaml:"recipients,omitempty"`
	// WebhookURL overrides SLACK_WEBHOOK_URL for in-process callers only.
	// It is never decoded from API requests or queued jobs.
	WebhookURL string `json:"-" yaml:"-"`
	Subject    string `json:"subject,omitempty" yaml:"subject,omitempty"`
}

// DeliveryResult is the outcome of one delivery. Failures are reported
// here rather than returned as errors.
type DeliveryResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NotificationJob is the queued form of a send, consumed by the
// notification worker. TemplateName empty means the channel default.
type NotificationJob struct {
	Module       string           `json:"module"`
	LinkedID     string           `json:"linked_id,omitempty"`
	TemplateName string           `json:"template_name,omitempty"`
	Data         map[string]any   `json:"data"`
	Configs      []DeliveryConfig `json:"configs"`
}
