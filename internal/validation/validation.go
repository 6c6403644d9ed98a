// Package validation checks dto inputs with struct tags and converts failures
// into the apperror taxonomy.
package validation

import (
	"errors"
	"reflect"

	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates s. A failing field named Quantity yields InvalidQuantity,
// anything else InvalidArgument.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.InvalidArgument("input")
	}

	fe := verrs[0]
	if fe.Field() == "Quantity" {
		qty := 0
		if v := reflect.ValueOf(fe.Value()); v.IsValid() && v.CanInt() {
			qty = int(v.Int())
		}
		return apperror.InvalidQuantity(qty)
	}
	return apperror.InvalidArgument(fe.Field())
}
