package forms

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	fiscalCodeRe = regexp.MustCompile(`(?i)^[A-Z]{6}[0-9]{2}[A-Z][0-9]{2}[A-Z][0-9]{3}[A-Z]$`)
	phoneRe      = regexp.MustCompile(`^(\+39|0039)?[\s.-]?[0-9]{6,12}$`)
	whitespaceRe = regexp.MustCompile(`\s`)
	digitsRe     = regexp.MustCompile(`^[0-9]+$`)
)

// validate is shared by every form; validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	mustRegister(v, "fiscalcode", func(fl validator.FieldLevel) bool {
		return fiscalCodeRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "phone_it", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(whitespaceRe.ReplaceAllString(fl.Field().String(), ""))
	})
	mustRegister(v, "digits", func(fl validator.FieldLevel) bool {
		return digitsRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "notfutureyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(time.Now().Year())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// FieldErrors maps a form field name to its first validation message.
type FieldErrors map[string]string

// Check validates a form struct and returns its messages, or nil when the
// form is valid.
func Check(form any) FieldErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe)
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(fe)
	}
	return out
}

// fieldPath drops the root struct name, keeping nested paths such as
// "items[0].description".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "Campo obbligatorio"
	case "min":
		if isString {
			return fmt.Sprintf("Deve avere almeno %s caratteri", fe.Param())
		}
		return fmt.Sprintf("Il valore minimo è %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Può avere al massimo %s caratteri", fe.Param())
		}
		return fmt.Sprintf("Il valore massimo è %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Deve essere maggiore di %s", fe.Param())
	case "len":
		return fmt.Sprintf("Deve avere esattamente %s caratteri", fe.Param())
	case "digits":
		return "Sono ammesse solo cifre"
	case "email":
		return "Formato email non valido"
	case "oneof":
		return "Valore non ammesso"
	case "fiscalcode":
		return "Formato codice fiscale non valido"
	case "phone_it":
		return "Formato telefono non valido"
	case "notfutureyear":
		return fmt.Sprintf("Il valore massimo è %d", time.Now().Year())
	case "gtefield":
		return "La data non può precedere quella di inizio"
	}
	return "Valore non valido"
}
