package templating

import (
	"errors"
	"fmt"
)

var ErrTemplateNotFound = errors.New("template not found")

// NotFoundError names the (module, channel) pair without a built-in
// notification template.
type NotFoundError struct {
	Module  string
	Channel Channel
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Template not found for %s - %s", e.Module, e.Channel)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrTemplateNotFound }
