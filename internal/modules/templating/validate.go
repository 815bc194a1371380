package templating

import "context"

// ValidationResult reports which template tokens the module does not
// declare. It is advisory: callers warn, they do not reject.
type ValidationResult struct {
	IsValid            bool     `json:"is_valid"`
	MissingVariables   []string `json:"missing_variables"`
	AvailableVariables []string `json:"available_variables"`
}

// Validate checks every token of template against module's variable fields.
func (e *Engine) Validate(ctx context.Context, template, module string) (ValidationResult, error) {
	available, err := e.ListVariables(ctx, module)
	if err != nil {
		return ValidationResult{}, err
	}
	return CheckTokens(template, available), nil
}

// CheckTokens is the pure half of Validate. Missing tokens keep their order
// of occurrence, duplicates included.
func CheckTokens(template string, available []string) ValidationResult {
	known := make(map[string]struct{}, len(available))
	for _, v := range available {
		known[v] = struct{}{}
	}
	missing := []string{}
	for _, tok := range Tokens(template) {
		if _, ok := known[tok]; !ok {
			missing = append(missing, tok)
		}
	}
	if available == nil {
		available = []string{}
	}
	return ValidationResult{
		IsValid:            len(missing) == 0,
		MissingVariables:   missing,
		AvailableVariables: available,
	}
}
