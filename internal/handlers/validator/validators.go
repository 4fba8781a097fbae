package validator

import (
	"github.com/go-playground/validator/v10"
)

// ValidationRule installs one custom tag or alias on a validate instance.
type ValidationRule struct {
	Rule func(v *validator.Validate)
}

// Validator wraps a validate instance together with every rule set registered
// against it. The handler registers one rule set per request family.
type Validator struct {
	validator *validator.Validate
	rules     []ValidationRule
}

func NewValidator() *Validator {
	v := validator.New()
	return &Validator{validator: v}
}

// Register installs the given rules. Later registrations add to earlier ones.
func (v *Validator) Register(rules ...ValidationRule) {
	for _, validationRule := range rules {
		validationRule.Rule(v.validator)
	}
	v.rules = append(v.rules, rules...)
}

func (v *Validator) Struct(s any) error {
	return v.validator.Struct(s)
}
