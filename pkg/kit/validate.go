package kit

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidationError lists the payload fields that failed their schema, by
// their JSON names.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

// Validate checks v against its `validate` struct tags.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}

const (
	MsgBadBody       = "잘못된 요청 본문입니다."
	MsgMissingFields = "필수 항목이 누락되었습니다."
)

// Bind decodes the JSON body into dst and validates it. On failure it has
// already answered 400 and returns false.
func Bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := DecodeJSON(w, r, dst); err != nil {
		WriteError(w, r, http.StatusBadRequest, MsgBadBody, map[string]any{"cause": err.Error()})
		return false
	}

	err := Validate(dst)
	if err == nil {
		return true
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		WriteError(w, r, http.StatusBadRequest, MsgMissingFields, map[string]any{"fields": verr.Fields})
		return false
	}
	WriteError(w, r, http.StatusBadRequest, MsgBadBody, nil)
	return false
}
