package api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messages shown to the user when input is rejected before any request is made.
const (
	MsgCreateFields = "Please fill all fields. Price must be greater than 0."
	MsgProductID    = "Please enter a product ID"
	MsgUpdateFields = "Please fill at least one field to update"
	MsgFilters      = "Filters must be numbers"
)

// ValidationError is returned for input rejected locally. It maps to 400.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	commonTags := []string{"json", "form", "query", "param"}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range commonTags {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return ""
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		r := sl.Current().Interface().(UpdateProductRequest)
		if r.Patch().IsEmpty() {
			sl.ReportError(r.Name, "name", "Name", "atleastone", "")
		}
	}, UpdateProductRequest{})

	return v
}

// ValidateCreate requires a name, a category and a positive price.
func ValidateCreate(r CreateProductRequest) error {
	return check(validate.Struct(r), MsgCreateFields)
}

// ValidateUpdate requires an id and at least one field.
func ValidateUpdate(id string, r UpdateProductRequest) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	return check(validate.Struct(r), MsgUpdateFields)
}

// ValidateID rejects an empty product id.
func ValidateID(id string) error {
	return check(validate.Var(id, "required"), MsgProductID)
}

// check turns a validator error into a ValidationError carrying msg.
func check(err error, msg string) error {
	if err == nil {
		return nil
	}
	ve := &ValidationError{Message: msg}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Field() != "" {
				ve.Fields = append(ve.Fields, fe.Field())
			}
		}
	}
	return ve
}
