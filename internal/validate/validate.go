// Package validate wraps go-playground/validator behind a single Struct
// call that gates every API write. Failures surface as a 400 AppError
// whose message lists each violated field by its JSON path.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/infinitas/crm/internal/apperror"
)

var (
	v    *validator.Validate
	once sync.Once
)

// instance returns the shared validator, initializing it on first use.
// Field names in error messages come from the json tag so messages match
// what the client actually sent.
func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return v
}

// Struct validates a request DTO against its struct tags. Returns nil on
// success, or a 400 validation AppError listing every violated field as
// "path: constraint", comma-joined.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError means the caller passed a non-struct;
		// that's a programming error, not client input.
		return apperror.NewInternal(fmt.Errorf("validating request: %w", err))
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldPath(fe)+": "+constraintMessage(fe))
	}
	return apperror.NewValidation("Validation error: " + strings.Join(msgs, ", "))
}

// fieldPath strips the top-level struct name from the namespace so errors
// read "address.postal_code" instead of "CreateContactRequest.address.postal_code".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// constraintMessage renders a violated constraint as a short human-readable
// phrase. Unknown tags fall back to the raw tag name.
func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "dive":
		return "contains an invalid element"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
