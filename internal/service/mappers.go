package service

import (
	api "github.com/reelforge/reelforge/api/v1alpha1"
	"github.com/reelforge/reelforge/internal/store/model"
)

// deriveStatus is the operational view over the stage column: terminal stages
// map directly, a claimed job is running, everything else is queued.
func deriveStatus(job *model.Job) api.JobStatus {
	switch job.Stage {
	case model.StagePublished, model.StageRejected:
		return api.JobStatusCompleted
	case model.StageFailed:
		return api.JobStatusFailed
	case model.StageCancelled:
		return api.JobStatusCancelled
	case model.StageAwaitingReview:
		return api.JobStatusBlockedOnReview
	}
	if job.StageStartedAt != nil {
		return api.JobStatusRunning
	}
	return api.JobStatusQueued
}

func jobToAPI(job *model.Job) api.Job {
	out := api.Job{
		Id:              job.ID,
		NicheId:         job.NicheID,
		BatchId:         job.BatchID,
		Topic:           job.Topic,
		Stage:           api.JobStage(job.Stage),
		Status:          deriveStatus(job),
		ErrorMessage:    job.ErrorMessage,
		ProgressPercent: job.ProgressPercent,
		Platforms:       job.GetPlatforms(),
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}

	artifacts := job.GetArtifacts()
	out.Artifacts = api.Artifacts{
		Script:       artifacts.Script,
		AudioPath:    artifacts.AudioPath,
		SubtitlePath: artifacts.SubtitlePath,
		VideoPath:    artifacts.VideoPath,
	}

	if job.Overrides != nil {
		o := job.Overrides.Data
		out.Overrides = &api.ConfigOverrides{
			VoiceID:           o.VoiceID,
			TargetDurationSec: o.TargetDurationSec,
			VideoProvider:     o.VideoProvider,
			VideoModel:        o.VideoModel,
			CustomScript:      o.CustomScript,
			Scenes:            o.Scenes,
			StartImageURL:     o.StartImageURL,
			EndImageURL:       o.EndImageURL,
		}
	}

	if job.Attempts != nil && len(job.Attempts.Data) > 0 {
		out.Attempts = job.Attempts.Data
	}

	for i := range job.PublishResults {
		out.PublishResults = append(out.PublishResults, publishResultToAPI(&job.PublishResults[i]))
	}

	return out
}

func publishResultToAPI(r *model.PublishResult) api.PublishResult {
	return api.PublishResult{
		Platform:  r.Platform,
		Attempt:   r.Attempt,
		Status:    api.PublishStatus(r.Status),
		RemoteURL: r.RemoteURL,
		Error:     r.Error,
		CreatedAt: r.CreatedAt,
	}
}

func overridesToModel(o *api.ConfigOverrides) *model.Overrides {
	if o == nil {
		return nil
	}
	return &model.Overrides{
		VoiceID:           o.VoiceID,
		TargetDurationSec: o.TargetDurationSec,
		VideoProvider:     o.VideoProvider,
		VideoModel:        o.VideoModel,
		CustomScript:      o.CustomScript,
		Scenes:            o.Scenes,
		StartImageURL:     o.StartImageURL,
		EndImageURL:       o.EndImageURL,
	}
}

func nicheToAPI(n *model.Niche) api.Niche {
	return api.Niche{
		Id:              n.ID,
		Name:            n.Name,
		Prompt:          n.Prompt,
		GenerationMode:  api.GenerationMode(n.GenerationMode),
		TopicSource:     n.TopicSource,
		LLMModel:        n.LLMModel,
		LLMTemperature:  n.LLMTemperature,
		TTSProvider:     n.TTSProvider,
		VoiceID:         n.VoiceID,
		WhisperModel:    n.WhisperModel,
		WhisperDevice:   n.WhisperDevice,
		VideoProvider:   n.VideoProvider,
		VideoModel:      n.VideoModel,
		AspectRatio:     n.AspectRatio,
		PostingSchedule: n.PostingSchedule,
		CreatedAt:       n.CreatedAt,
	}
}

func nicheFormToModel(form *api.NicheForm) *model.Niche {
	mode := string(form.GenerationMode)
	if mode == "" {
		mode = model.GenerationModeReviewFirst
	}
	return &model.Niche{
		Name:            form.Name,
		Prompt:          form.Prompt,
		GenerationMode:  mode,
		TopicSource:     form.TopicSource,
		LLMModel:        form.LLMModel,
		LLMTemperature:  form.LLMTemperature,
		TTSProvider:     form.TTSProvider,
		VoiceID:         form.VoiceID,
		WhisperModel:    form.WhisperModel,
		WhisperDevice:   form.WhisperDevice,
		VideoProvider:   form.VideoProvider,
		VideoModel:      form.VideoModel,
		AspectRatio:     form.AspectRatio,
		PostingSchedule: form.PostingSchedule,
	}
}

func accountToAPI(a *model.Account) api.Account {
	return api.Account{
		Id:          a.ID,
		NicheId:     a.NicheID,
		Platform:    a.Platform,
		Name:        a.Name,
		PublishMode: api.PublishMode(a.PublishMode),
		VoiceID:     a.VoiceID,
		CreatedAt:   a.CreatedAt,
	}
}

func voiceToAPI(v *model.VoiceProfile) api.VoiceProfile {
	return api.VoiceProfile{
		Id:              v.ID,
		Name:            v.Name,
		Provider:        v.Provider,
		ProviderVoiceID: v.ProviderVoiceID,
	}
}
