package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	api "github.com/reelforge/reelforge/api/v1alpha1"
)

var (
	nicheNameValidRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9 _-]*[a-zA-Z0-9])?$`)

	supportedPlatforms = map[string]bool{
		"youtube":   true,
		"tiktok":    true,
		"instagram": true,
	}

	cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
)

func nameValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return nicheNameValidRegex.MatchString(val)
}

func platformValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return supportedPlatforms[val]
}

func generationModeValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(api.GenerationMode)
	if !ok {
		return false
	}

	switch val {
	case api.GenerationModeReviewFirst, api.GenerationModeAutoPublish:
		return true
	}
	return false
}

func publishModeValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(api.PublishMode)
	if !ok {
		return false
	}

	switch val {
	case api.PublishModeAPI, api.PublishModeBrowser, api.PublishModeHybrid:
		return true
	}
	return false
}

func cronScheduleValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := cronParser.Parse(val)
	return err == nil
}

// SupportedPlatforms lists the platforms accepted by the platform rule.
func SupportedPlatforms() []string {
	out := make([]string, 0, len(supportedPlatforms))
	for p := range supportedPlatforms {
		out = append(out, p)
	}
	return out
}
