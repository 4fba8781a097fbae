package validator

import "github.com/go-playground/validator/v10"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewJobValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("platform", platformValidator),
		},
	}
}

func NewNicheValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("niche_name", nameValidator),
		},
		{
			Rule: registerFn("generation_mode", generationModeValidator),
		},
		{
			Rule: registerFn("cron_schedule", cronScheduleValidator),
		},
	}
}

func NewAccountValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("platform", platformValidator),
		},
		{
			Rule: registerFn("publish_mode", publishModeValidator),
		},
	}
}
