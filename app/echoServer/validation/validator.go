package validation

import (
	"github.com/go-playground/validator/v10"

	"github.com/jasonlau05/bookstore/util/apperr"
)

// Validator plugs validator/v10 into echo.Context.Validate.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.v.Struct(i); err != nil {
		return apperr.Wrap(apperr.Validation, err, err.Error())
	}
	return nil
}
