package render

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/nkiryanov/spbuhub/internal/numeric"
)

const maxFuelTypeLen = 64

func configureValidator(validate *validator.Validate) {
	validate.RegisterTagNameFunc(useJSONTagNames)

	// Decimals are validated by their exact text, never as floats
	validate.RegisterCustomTypeFunc(decimalAsString, numeric.Decimal{})
	_ = validate.RegisterValidation("decimal_gt0", validateDecimalGreaterThanZero)
	_ = validate.RegisterValidation("fueltype", validateFuelType)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

func decimalAsString(v reflect.Value) any {
	if d, ok := v.Interface().(numeric.Decimal); ok {
		return d.String()
	}
	return nil
}

func validateDecimalGreaterThanZero(fl validator.FieldLevel) bool {
	d, err := numeric.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// Fuel type is free text: "pertalite", "Pertamax Turbo", "solar"
func validateFuelType(fl validator.FieldLevel) bool {
	fuelType := strings.TrimSpace(fl.Field().String())
	if fuelType == "" || len(fuelType) > maxFuelTypeLen {
		return false
	}

	for _, r := range fuelType {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
