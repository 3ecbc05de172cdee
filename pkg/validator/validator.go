package validator

import (
	"log"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var countryPattern = regexp.MustCompile(`^[\p{L} .'-]{2,64}$`)

func RegisterGinValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register installs json tag names and the custom tags on v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("country", countryValidator); err != nil {
		log.Fatal("register country validator failed")
	}
	if err := v.RegisterValidation("pastdate", pastDateValidator); err != nil {
		log.Fatal("register pastdate validator failed")
	}
}

var countryValidator validator.Func = func(fl validator.FieldLevel) bool {
	return countryPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

// pastDateValidator accepts YYYY-MM-DD dates strictly before today.
var pastDateValidator validator.Func = func(fl validator.FieldLevel) bool {
	d, err := time.Parse(dateLayout, fl.Field().String())
	if err != nil {
		return false
	}
	return d.Before(time.Now().UTC().Truncate(24 * time.Hour))
}
