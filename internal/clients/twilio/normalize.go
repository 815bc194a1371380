package twilio

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizePhone parses raw in region (ISO 3166 code, used when raw has no
// country prefix) and formats it as E.164.
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("twilio: phone number required")
	}
	parsed, err := phonenumbers.Parse(raw, strings.ToUpper(strings.TrimSpace(region)))
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("twilio: invalid phone number %q", raw)
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
