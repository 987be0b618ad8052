package httpx

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ValidationFields flattens validator errors into a field→message map,
// nil when the struct is valid.
func ValidationFields(err error) map[string]string {
	if err == nil {
		return nil
	}
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fieldErr := range verrs {
			fields[fieldErr.Field()] = fieldErr.Tag()
		}
	} else {
		fields["general"] = err.Error()
	}
	return fields
}
