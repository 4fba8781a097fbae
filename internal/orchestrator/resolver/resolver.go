// Package resolver computes the effective per-job configuration from the
// layered override chain: job override, then niche setting, then account
// rule, then system default. Resolution is a pure function so a retried
// stage replays with the exact same configuration.
package resolver

import (
	"github.com/reelforge/reelforge/internal/store/model"
)

// Defaults is the lowest-priority layer, taken from service configuration.
type Defaults struct {
	LLMModel          string
	LLMTemperature    float64
	TTSProvider       string
	VoiceID           string
	WhisperModel      string
	WhisperDevice     string
	VideoProvider     string
	VideoModel        string
	AspectRatio       string
	TargetDurationSec int
}

// EffectiveConfig bundles every setting a stage executor needs.
type EffectiveConfig struct {
	LLMModel          string
	LLMTemperature    float64
	TTSProvider       string
	VoiceID           string
	WhisperModel      string
	WhisperDevice     string
	VideoProvider     string
	VideoModel        string
	AspectRatio       string
	TargetDurationSec int
}

// Resolve computes the effective configuration. niche must be non-nil;
// account may be nil when the job has no publishing identity attached yet.
// Per field, a higher-priority layer that is present and non-empty wins and
// lower layers are never consulted.
func Resolve(job *model.Job, niche *model.Niche, account *model.Account, defaults Defaults) EffectiveConfig {
	overrides := job.GetOverrides()

	accountVoice := ""
	if account != nil {
		accountVoice = account.VoiceID
	}

	cfg := EffectiveConfig{
		LLMModel:       firstNonEmpty(niche.LLMModel, defaults.LLMModel),
		LLMTemperature: defaults.LLMTemperature,
		TTSProvider:    firstNonEmpty(niche.TTSProvider, defaults.TTSProvider),
		VoiceID: firstNonEmpty(
			overrides.VoiceID,
			niche.VoiceID,
			accountVoice,
			defaults.VoiceID,
		),
		WhisperModel:  firstNonEmpty(niche.WhisperModel, defaults.WhisperModel),
		WhisperDevice: firstNonEmpty(niche.WhisperDevice, defaults.WhisperDevice),
		VideoProvider: firstNonEmpty(
			overrides.VideoProvider,
			niche.VideoProvider,
			defaults.VideoProvider,
		),
		VideoModel: firstNonEmpty(
			overrides.VideoModel,
			niche.VideoModel,
			defaults.VideoModel,
		),
		AspectRatio: firstNonEmpty(niche.AspectRatio, defaults.AspectRatio),
		TargetDurationSec: firstPositive(
			overrides.TargetDurationSec,
			defaults.TargetDurationSec,
		),
	}

	if niche.LLMTemperature != nil {
		cfg.LLMTemperature = *niche.LLMTemperature
	}

	return cfg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
