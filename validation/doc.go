// Package validation checks pipeline definitions and API input.
//
// Struct tags are evaluated with go-playground/validator; failures become a
// VALIDATION_ERROR *errors.AppError listing every offending field:
//
//	type Definition struct {
//	    ID string `json:"id" validate:"required"`
//	}
//	err := validation.Validate(def)
//
// Hand-written checks collect errors the same way:
//
//	v := validation.New()
//	v.Required("id", id).Pattern("id", id, validation.IDPattern)
//	if err := v.Validate(); err != nil { ... }
package validation
