package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "bikepulse/internal/errors"
)

// RequestValidator checks request structs against their validate tags and
// reports failures under the name the client used for the field.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a validator that names fields after their
// query, param or json tag, in that order of preference
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"query", "param", "json"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &RequestValidator{validate: v}
}

// Struct validates v. Field failures come back as a 400 *apierrors.APIError
// listing every offending field.
func (rv *RequestValidator) Struct(v interface{}) error {
	err := rv.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return apierrors.NewValidationErrors(apierrors.FieldErrors(fieldErrs))
	}
	return apierrors.InvalidRequestWithError(err)
}
