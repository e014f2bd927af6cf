package handler

import (
    "net/http"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/absolute-cinema/ticketing-engine/internal/utils"
)

// RequestValidator adapts go-playground/validator to Echo's Validator
// interface so handlers can call c.Validate(&req) after binding.
type RequestValidator struct {
    validate *validator.Validate
}

// NewRequestValidator builds the validator and registers the custom
// "cpf" rule used on occupant documents.
func NewRequestValidator() *RequestValidator {
    v := validator.New()
    _ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
        return utils.IsCPF(fl.Field().String())
    })
    return &RequestValidator{validate: v}
}

// Validate implements echo.Validator.  Validation failures become 400
// responses with the offending field paths.
func (rv *RequestValidator) Validate(i interface{}) error {
    if err := rv.validate.Struct(i); err != nil {
        var fields []string
        if verr, ok := err.(validator.ValidationErrors); ok {
            for _, fe := range verr {
                fields = append(fields, fe.Namespace())
            }
        }
        return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
            "error":  "validation failed",
            "fields": fields,
        })
    }
    return nil
}
