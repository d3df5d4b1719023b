package handlers

import (
	"regexp"
	"strconv"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	phonePattern  = regexp.MustCompile(`^\+?[0-9]{0,3}[0-9]{10}$`)
	validatorOnce sync.Once
)

// RegisterValidators adds the strongpassword and phone binding tags to gin's
// validator engine.
func RegisterValidators() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		})
		v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
	})
}

// IsStrongPassword requires at least 6 characters with a digit, a lowercase
// and an uppercase letter.
func IsStrongPassword(p string) bool {
	if len(p) < 6 {
		return false
	}
	var digit, lower, upper bool
	for _, r := range p {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		}
	}
	return digit && lower && upper
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
