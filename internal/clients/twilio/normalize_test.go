package twilio

import (
	"testing"

	"github.com/yungbote/opsdesk-backend/internal/platform/logger"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		region  string
		want    string
		wantErr bool
	}{
		{name: "domestic mobile", raw: "090-1234-5678", region: "JP", want: "+819012345678"},
		{name: "already e164", raw: "+14155552671", region: "JP", want: "+14155552671"},
		{name: "lowercase region", raw: "090 1234 5678", region: "jp", want: "+819012345678"},
		{name: "blank", raw: "  ", region: "JP", wantErr: true},
		{name: "garbage", raw: "not-a-number", region: "JP", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizePhone(tc.raw, tc.region)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestNewValidatesCredentials(t *testing.T) {
	log := logger.Nop()
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{name: "missing sid", cfg: Config{AuthToken: "t", DefaultFrom: "+815012345678"}},
		{name: "missing token", cfg: Config{AccountSID: "AC1", DefaultFrom: "+815012345678"}},
		{name: "api key without secret", cfg: Config{AccountSID: "AC1", APIKey: "SK1", DefaultFrom: "+815012345678"}},
		{name: "missing sender", cfg: Config{AccountSID: "AC1", AuthToken: "t"}},
		{name: "auth token", cfg: Config{AccountSID: "AC1", AuthToken: "t", DefaultFrom: "+815012345678"}, ok: true},
		{name: "api key", cfg: Config{AccountSID: "AC1", APIKey: "SK1", APIKeySecret: "s", DefaultFrom: "+815012345678"}, ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(log, tc.cfg)
			if tc.ok && err != nil {
				t.Fatalf("New: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
