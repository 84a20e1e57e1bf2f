package handler

import (
    "errors"
    "fmt"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
)

// RequestValidator plugs go-playground/validator into echo's
// c.Validate.  Messages name fields by their JSON tag.
type RequestValidator struct {
    v *validator.Validate
}

// NewRequestValidator returns a validator for request bodies and queries.
func NewRequestValidator() *RequestValidator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        for _, tag := range []string{f.Tag.Get("json"), f.Tag.Get("query")} {
            name := strings.SplitN(tag, ",", 2)[0]
            if name != "" && name != "-" {
                return name
            }
        }
        return f.Name
    })
    return &RequestValidator{v: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i interface{}) error {
    err := rv.v.Struct(i)
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) || len(verrs) == 0 {
        return err
    }
    fe := verrs[0]
    switch fe.Tag() {
    case "required":
        return fmt.Errorf("%s is required", fe.Field())
    case "datetime":
        return fmt.Errorf("%s must be a date in YYYY-MM-DD format", fe.Field())
    case "oneof":
        return fmt.Errorf("%s must be one of: %s", fe.Field(), fe.Param())
    case "max":
        return fmt.Errorf("%s must be at most %s characters", fe.Field(), fe.Param())
    }
    return fmt.Errorf("%s is invalid", fe.Field())
}
