package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kozaktomas/staff-clock/internal/constants"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a JSON body of at most constants.MaxJSONBodySize bytes into dst and validates it.
// The returned message is safe to send to the client.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return formatBindingError(err), false
	}
	if err := validate.Struct(dst); err != nil {
		return formatBindingError(err), false
	}
	return "", true
}

func formatBindingError(err error) string {
	if errors.Is(err, io.EOF) {
		return "request body is empty"
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("invalid JSON at byte offset %d", syntaxErr.Offset)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("field '%s' should be of type %s", typeErr.Field, typeErr.Type.String())
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make([]string, 0, len(ve))
		for _, fe := range ve {
			out = append(out, formatFieldError(fe))
		}
		return strings.Join(out, ", ")
	}
	return errInvalidRequestBody
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", field)
	case "min":
		return fmt.Sprintf("field '%s' must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("field '%s' must be at most %s", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("field '%s' must be numeric", field)
	case "len":
		return fmt.Sprintf("field '%s' must have length %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of [%s]", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("field '%s' must match %s", field, fe.Param())
	}
	return fmt.Sprintf("field '%s' failed validation for '%s'", field, fe.Tag())
}
