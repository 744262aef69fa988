package handlers

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// isCurrencyCode accepts three ASCII letters in either case.
func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

func validateCurrencyCode(fl validator.FieldLevel) bool {
	return isCurrencyCode(fl.Field().String())
}

// RegisterValidators adds the custom binding tags to gin's validator engine.
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("currency_code", validateCurrencyCode)
		}
	})
}
