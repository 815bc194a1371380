package services

import (
	"unicode/utf8"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
)

const previewLen = 100

func fieldKeys(defs []*types.FieldDefinition) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		if d != nil {
			out = append(out, d.FieldKey)
		}
	}
	return out
}

// difference returns the members of want absent from have, in want's order.
func difference(want, have []string) []string {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	out := []string{}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			out = append(out, w)
		}
	}
	return out
}

// preview keeps the first 100 characters and always marks the cut.
func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLen {
		return s + "..."
	}
	return string([]rune(s)[:previewLen]) + "..."
}

var metricModules = func() map[string]struct{} {
	out := map[string]struct{}{}
	for _, m := range templating.Modules() {
		out[m] = struct{}{}
	}
	for _, m := range VerificationModules {
		out[m] = struct{}{}
	}
	return out
}()

// metricModule bounds the module label of metrics. Module names arrive as
// path parameters, so anything unknown shares "other".
func metricModule(module string) string {
	if _, ok := metricModules[module]; ok {
		return module
	}
	return "other"
}

func metricChannel(ch templating.Channel) string {
	if ch.Valid() {
		return string(ch)
	}
	return "other"
}
