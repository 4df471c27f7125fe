package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spendscore/internal/model"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// isodate: a YYYY-MM-DD calendar date.
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := model.ParseDate(fl.Field().String())
		return err == nil
	})

	// amount: a finite number within model.MaxAbsAmount.
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		return model.ValidAmount(fl.Field().Float())
	})

	// notblank: not empty and not only whitespace.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// validateStruct returns a readable message naming every failing field.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Namespace()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must contain at least %s item(s)", e.Namespace(), e.Param()))
		case "amount":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %g in magnitude", e.Namespace(), model.MaxAbsAmount))
		case "isodate":
			msgs = append(msgs, fmt.Sprintf("%s must be a YYYY-MM-DD date", e.Namespace()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", e.Namespace(), e.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
