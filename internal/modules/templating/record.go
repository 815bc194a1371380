package templating

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
)

// RecordValidation maps field keys to the message for the last rule that
// field failed.
type RecordValidation struct {
	IsValid bool              `json:"is_valid"`
	Errors  map[string]string `json:"errors"`
}

// ValidateRecord checks data against module's visible field definitions.
func (e *Engine) ValidateRecord(ctx context.Context, module string, data Context) (RecordValidation, error) {
	fields, err := e.store.ListFields(ctx, module, VisibleFieldFilter())
	if err != nil {
		return RecordValidation{}, err
	}
	return CheckRecord(fields, data), nil
}

// CheckRecord applies required, minLength, maxLength and pattern rules in
// that order; a later failure replaces an earlier message. Length rules
// count characters and only apply to string values. Patterns that do not
// compile are ignored.
func CheckRecord(fields []*types.FieldDefinition, data Context) RecordValidation {
	errs := map[string]string{}
	for _, f := range fields {
		if f == nil {
			continue
		}
		v := data[f.FieldKey]
		if f.Required && !truthy(v) {
			errs[f.FieldKey] = fmt.Sprintf("%sは必須項目です。", f.Label)
		}
		if !truthy(v) {
			continue
		}
		rules := f.Rules()
		if s, ok := v.(string); ok {
			n := utf8.RuneCountInString(s)
			if rules.MinLength != nil && *rules.MinLength > 0 && n < *rules.MinLength {
				errs[f.FieldKey] = fmt.Sprintf("%sは%d文字以上で入力してください。", f.Label, *rules.MinLength)
			}
			if rules.MaxLength != nil && *rules.MaxLength > 0 && n > *rules.MaxLength {
				errs[f.FieldKey] = fmt.Sprintf("%sは%d文字以下で入力してください。", f.Label, *rules.MaxLength)
			}
		}
		if rules.Pattern != "" {
			re, err := regexp.Compile(rules.Pattern)
			if err == nil && !re.MatchString(Stringify(v)) {
				errs[f.FieldKey] = fmt.Sprintf("%sの形式が正しくありません。", f.Label)
			}
		}
	}
	return RecordValidation{IsValid: len(errs) == 0, Errors: errs}
}
