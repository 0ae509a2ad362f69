package util

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/samber/lo"
)

var registerOnce sync.Once

// RegisterValidators makes gin report JSON field names and adds the notblank tag.
// Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	})
}

// IsEmail reports whether s is a single valid address, using the validator gin binds with.
func IsEmail(s string) bool {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return false
	}
	return v.Var(s, "required,email") == nil
}

// BindErrors splits a binding error into missing and malformed fields, both sorted.
// ok is false when err is not a validation error (e.g. malformed JSON).
func BindErrors(err error) (missing, invalid []string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, nil, false
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "notblank":
			missing = append(missing, fe.Field())
		default:
			invalid = append(invalid, fe.Field())
		}
	}
	missing = lo.Uniq(missing)
	invalid = lo.Uniq(invalid)
	sort.Strings(missing)
	sort.Strings(invalid)
	return missing, invalid, true
}
