package v1alpha1

import (
	"time"

	"github.com/google/uuid"
)

type JobStage string

const (
	JobStageCreated        JobStage = "created"
	JobStageTopicReady     JobStage = "topic_ready"
	JobStageScriptReady    JobStage = "script_ready"
	JobStageAudioReady     JobStage = "audio_ready"
	JobStageSubtitlesReady JobStage = "subtitles_ready"
	JobStageVideoReady     JobStage = "video_ready"
	JobStageAwaitingReview JobStage = "awaiting_review"
	JobStageApproved       JobStage = "approved"
	JobStagePublishing     JobStage = "publishing"
	JobStagePublished      JobStage = "published"
	JobStageRejected       JobStage = "rejected"
	JobStageFailed         JobStage = "failed"
	JobStageCancelled      JobStage = "cancelled"
)

type JobStatus string

const (
	JobStatusQueued          JobStatus = "queued"
	JobStatusRunning         JobStatus = "running"
	JobStatusBlockedOnReview JobStatus = "blocked_on_review"
	JobStatusFailed          JobStatus = "failed"
	JobStatusCancelled       JobStatus = "cancelled"
	JobStatusCompleted       JobStatus = "completed"
)

type GenerationMode string

const (
	GenerationModeReviewFirst GenerationMode = "review_first"
	GenerationModeAutoPublish GenerationMode = "auto_publish"
)

type PublishMode string

const (
	PublishModeAPI     PublishMode = "api"
	PublishModeBrowser PublishMode = "browser"
	PublishModeHybrid  PublishMode = "hybrid"
)

type PublishStatus string

const (
	PublishStatusPublished      PublishStatus = "published"
	PublishStatusPrivate        PublishStatus = "private"
	PublishStatusManualRequired PublishStatus = "manual_required"
	PublishStatusFailed         PublishStatus = "failed"
)

// ConfigOverrides are the per-job settings that take top priority during
// configuration resolution.
type ConfigOverrides struct {
	VoiceID           string   `json:"voiceId,omitempty"`
	TargetDurationSec int      `json:"targetDurationSec,omitempty"`
	VideoProvider     string   `json:"videoProvider,omitempty"`
	VideoModel        string   `json:"videoModel,omitempty"`
	CustomScript      string   `json:"customScript,omitempty"`
	Scenes            []string `json:"scenes,omitempty"`
	StartImageURL     string   `json:"startImageUrl,omitempty"`
	EndImageURL       string   `json:"endImageUrl,omitempty"`
}

// Artifacts holds the outputs produced so far. Each pipeline stage fills
// exactly one field and never touches the others.
type Artifacts struct {
	Script       string `json:"script,omitempty"`
	AudioPath    string `json:"audioPath,omitempty"`
	SubtitlePath string `json:"subtitlePath,omitempty"`
	VideoPath    string `json:"videoPath,omitempty"`
}

type Job struct {
	Id              uuid.UUID        `json:"id"`
	NicheId         uuid.UUID        `json:"nicheId"`
	BatchId         *uuid.UUID       `json:"batchId,omitempty"`
	Topic           string           `json:"topic"`
	Stage           JobStage         `json:"stage"`
	Status          JobStatus        `json:"status"`
	Overrides       *ConfigOverrides `json:"overrides,omitempty"`
	Artifacts       Artifacts        `json:"artifacts"`
	Attempts        map[string]int   `json:"attempts,omitempty"`
	ErrorMessage    string           `json:"errorMessage,omitempty"`
	ProgressPercent int              `json:"progressPercent"`
	Platforms       []string         `json:"platforms,omitempty"`
	PublishResults  []PublishResult  `json:"publishResults,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type JobList []Job

type JobCreate struct {
	NicheId   uuid.UUID        `json:"nicheId" validate:"required"`
	Topic     string           `json:"topic,omitempty"`
	Count     int              `json:"count,omitempty" validate:"omitempty,min=1,max=20"`
	Overrides *ConfigOverrides `json:"overrides,omitempty"`
	Platforms []string         `json:"platforms,omitempty"`
}

type JobApprove struct {
	Platforms []string `json:"platforms" validate:"required,min=1,dive,platform"`
	Publish   bool     `json:"publish"`
}

type JobLogEntry struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type PublishResult struct {
	Platform  string        `json:"platform"`
	Attempt   int           `json:"attempt"`
	Status    PublishStatus `json:"status"`
	RemoteURL string        `json:"remoteUrl,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

type Niche struct {
	Id              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Prompt          string         `json:"prompt,omitempty"`
	GenerationMode  GenerationMode `json:"generationMode"`
	TopicSource     string         `json:"topicSource,omitempty"`
	LLMModel        string         `json:"llmModel,omitempty"`
	LLMTemperature  *float64       `json:"llmTemperature,omitempty"`
	TTSProvider     string         `json:"ttsProvider,omitempty"`
	VoiceID         string         `json:"voiceId,omitempty"`
	WhisperModel    string         `json:"whisperModel,omitempty"`
	WhisperDevice   string         `json:"whisperDevice,omitempty"`
	VideoProvider   string         `json:"videoProvider,omitempty"`
	VideoModel      string         `json:"videoModel,omitempty"`
	AspectRatio     string         `json:"aspectRatio,omitempty"`
	PostingSchedule string         `json:"postingSchedule,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

type NicheList []Niche

type NicheForm struct {
	Name            string         `json:"name" validate:"required,niche_name"`
	Prompt          string         `json:"prompt,omitempty"`
	GenerationMode  GenerationMode `json:"generationMode,omitempty" validate:"omitempty,generation_mode"`
	TopicSource     string         `json:"topicSource,omitempty"`
	LLMModel        string         `json:"llmModel,omitempty"`
	LLMTemperature  *float64       `json:"llmTemperature,omitempty" validate:"omitempty,min=0,max=2"`
	TTSProvider     string         `json:"ttsProvider,omitempty"`
	VoiceID         string         `json:"voiceId,omitempty"`
	WhisperModel    string         `json:"whisperModel,omitempty"`
	WhisperDevice   string         `json:"whisperDevice,omitempty"`
	VideoProvider   string         `json:"videoProvider,omitempty"`
	VideoModel      string         `json:"videoModel,omitempty"`
	AspectRatio     string         `json:"aspectRatio,omitempty"`
	PostingSchedule string         `json:"postingSchedule,omitempty" validate:"omitempty,cron_schedule"`
}

type Account struct {
	Id          uuid.UUID   `json:"id"`
	NicheId     *uuid.UUID  `json:"nicheId,omitempty"`
	Platform    string      `json:"platform"`
	Name        string      `json:"name"`
	PublishMode PublishMode `json:"publishMode"`
	VoiceID     string      `json:"voiceId,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type AccountForm struct {
	NicheId     *uuid.UUID  `json:"nicheId,omitempty"`
	Platform    string      `json:"platform" validate:"required,platform"`
	Name        string      `json:"name" validate:"required"`
	PublishMode PublishMode `json:"publishMode,omitempty" validate:"omitempty,publish_mode"`
	VoiceID     string      `json:"voiceId,omitempty"`
}

type VoiceProfile struct {
	Id              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Provider        string    `json:"provider"`
	ProviderVoiceID string    `json:"providerVoiceId"`
}

type VoiceProfileForm struct {
	Name            string `json:"name" validate:"required"`
	Provider        string `json:"provider" validate:"required"`
	ProviderVoiceID string `json:"providerVoiceId" validate:"required"`
}

type HealthSeverity string

const (
	HealthSeverityOK       HealthSeverity = "ok"
	HealthSeverityOptional HealthSeverity = "optional"
	HealthSeverityWarning  HealthSeverity = "warning"
	HealthSeverityBlocking HealthSeverity = "blocking"
)

type ProviderHealth struct {
	Name      string         `json:"name"`
	Kind      string         `json:"kind"`
	Available bool           `json:"available"`
	Severity  HealthSeverity `json:"severity"`
	Detail    string         `json:"detail,omitempty"`
	Active    bool           `json:"active"`
}

type Health struct {
	Status    string           `json:"status"`
	Providers []ProviderHealth `json:"providers"`
}

type Error struct {
	Message string `json:"message"`
}
