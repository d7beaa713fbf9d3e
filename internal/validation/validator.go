// Package validation wraps go-playground/validator with a shared instance and
// readable error messages for imported datasets.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/albapepper/consumer-insights/internal/retail"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed constraint.
type FieldError struct {
	Namespace string // e.g. Dataset.Orders[3].Status
	Tag       string
	Param     string
	Message   string
}

// Errors collects every failed constraint of one struct.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Namespace + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Get returns the shared validator instance.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Registration only fails for an empty tag or nil func.
		_ = validate.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
			return retail.OrderStatus(fl.Field().String()).Valid()
		})
	})
	return validate
}

// Struct validates s. It returns nil or an Errors value.
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Namespace: fe.Namespace(),
			Tag:       fe.Tag(),
			Param:     fe.Param(),
			Message:   translate(fe),
		}
	}
	return out
}

var messages = map[string]string{
	"required":     "is required",
	"email":        "must be a valid email address",
	"order_status": "must be a known order status (" + statusList() + ")",
}

func statusList() string {
	names := make([]string, len(retail.Statuses))
	for i, st := range retail.Statuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

var messagesWithParam = map[string]string{
	"oneof": "must be one of: %s",
	"min":   "must be at least %s",
	"max":   "must be at most %s",
	"gte":   "must be greater than or equal to %s",
}

func translate(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	if tmpl, ok := messagesWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Param())
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}
