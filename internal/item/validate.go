package item

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/festmap/festmap/backend-go/internal/document"
)

var (
	// ErrInvalidItem matches every ValidationError.
	ErrInvalidItem = errors.New("invalid item")

	// ErrUnknownField is returned when setting a property the item does not have.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidValue is returned when a property value cannot be parsed or is out of range.
	ErrInvalidValue = errors.New("invalid value")
)

// ValidationError lists the fields of a record that are missing or invalid.
type ValidationError struct {
	Kind   document.ItemType
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: missing or invalid field(s): %s", e.Kind, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidItem
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Validate checks that rec carries every field its type requires.
func Validate(rec document.Record) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate %s: %w", rec.Type, err)
	}

	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Kind: rec.Type, Fields: fields}
}

func isHexColor(value string) bool {
	return validate.Var(value, "required,hexcolor") == nil
}
