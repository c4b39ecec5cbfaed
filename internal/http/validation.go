package http

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"homelist/internal/auth"
	"homelist/internal/domain"
)

const minBirthYear = 1940

var validatorsOnce sync.Once

// registerValidators adds the domain rules to gin's shared validator and makes
// field errors report JSON/form names.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return auth.ValidatePassword(fl.Field().String()) == nil
		})
		_ = v.RegisterValidation("dob", func(fl validator.FieldLevel) bool {
			dob, ok := fl.Field().Interface().(time.Time)
			if !ok {
				return false
			}
			return dob.Year() >= minBirthYear && !dob.After(time.Now())
		})
		_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
			return domain.Gender(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("listingtype", func(fl validator.FieldLevel) bool {
			return domain.ListingType(fl.Field().String()).Valid()
		})
	})
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "password":
		return auth.ErrWeakPassword.Error()
	case "dob":
		return "year must be after 1940 and not in the future"
	case "gender":
		return "value is not a valid enumeration member; permitted: 'MALE', 'FEMALE', 'NOT_SPECIFIED'"
	case "listingtype":
		return "value is not a valid enumeration member; permitted: 'HOUSE', 'APARTMENT'"
	case "min", "max", "gte", "lte":
		return "ensure this value satisfies " + fe.Tag() + "=" + fe.Param()
	default:
		return "invalid value"
	}
}
