package templating

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// tokenPattern is the only recognised placeholder form: two braces, one or
// more ASCII word characters, two braces. No whitespace, no defaults.
var tokenPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Context is the key/value data a template is expanded against.
type Context map[string]any

// Expand replaces every {{key}} in template with the string form of
// ctx[key]. Keys that are absent or nil are left as the literal token so a
// template can be expanded again once more data is available. Substituted
// values are never re-scanned.
func Expand(template string, ctx Context) string {
	if template == "" {
		return template
	}
	return tokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[2 : len(match)-2]
		v, ok := ctx[key]
		if !ok || v == nil {
			return match
		}
		return Stringify(v)
	})
}

// Tokens returns the keys referenced by template in order of occurrence,
// duplicates included.
func Tokens(template string) []string {
	matches := tokenPattern.FindAllStringSubmatch(template, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// Stringify renders a context value the way a dashboard user expects to
// read it: integral floats without a fraction, lists comma-joined.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case json.Number:
		return t.String()
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(t, ",")
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// truthy follows the loose truthiness dashboard forms use: nil, "", false
// and numeric zero are falsy, everything else is truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case float32:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case int32:
		return t != 0
	case uint:
		return t != 0
	case uint64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}
