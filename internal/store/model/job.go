package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Overrides are the per-job configuration overrides. They sit at the top of
// the resolution chain: job override, then niche, then account, then system
// default.
type Overrides struct {
	VoiceID           string   `json:"voice_id,omitempty"`
	TargetDurationSec int      `json:"target_duration_sec,omitempty"`
	VideoProvider     string   `json:"video_provider,omitempty"`
	VideoModel        string   `json:"video_model,omitempty"`
	CustomScript      string   `json:"custom_script,omitempty"`
	Scenes            []string `json:"scenes,omitempty"`
	StartImageURL     string   `json:"start_image_url,omitempty"`
	EndImageURL       string   `json:"end_image_url,omitempty"`
}

// Artifacts are ownership-exclusive references to stage outputs. Each stage
// writes exactly one field and never rewrites another stage's field.
type Artifacts struct {
	Script       string `json:"script,omitempty"`
	AudioPath    string `json:"audio_path,omitempty"`
	SubtitlePath string `json:"subtitle_path,omitempty"`
	VideoPath    string `json:"video_path,omitempty"`
}

type Job struct {
	gorm.Model
	ID      uuid.UUID  `gorm:"primaryKey"`
	NicheID uuid.UUID  `gorm:"not null;index"`
	BatchID *uuid.UUID `gorm:"index"`
	Topic   string
	Stage   string `gorm:"not null;index;default:created"`

	Overrides *JSONField[Overrides]      `gorm:"type:jsonb"`
	Artifacts *JSONField[Artifacts]      `gorm:"type:jsonb"`
	Attempts  *JSONField[map[string]int] `gorm:"type:jsonb"`

	// RetriesUsed counts every transient retry over the job's lifetime,
	// capping the budget for errors that default to transient.
	RetriesUsed     int
	ErrorMessage    string
	// FailedStage remembers which stage the job failed in so an external
	// retry can re-enter the forward flow from there.
	FailedStage     string
	ProgressPercent int
	StageStartedAt  *time.Time
	CancelRequested bool

	// Publishing state, set by the review decision.
	PublishRequested bool
	Platforms        *JSONField[[]string] `gorm:"type:jsonb"`

	Logs           []JobLog        `gorm:"constraint:OnDelete:CASCADE;"`
	PublishResults []PublishResult `gorm:"constraint:OnDelete:CASCADE;"`
}

type JobList []Job

func (j Job) String() string {
	val, _ := json.Marshal(j)
	return string(val)
}

func NewJobFromID(id uuid.UUID) *Job {
	return &Job{ID: id}
}

// AttemptCount returns the number of recorded attempts for the given stage.
func (j *Job) AttemptCount(stage string) int {
	if j.Attempts == nil {
		return 0
	}
	return j.Attempts.Data[stage]
}

// GetArtifacts returns the artifact set, never nil.
func (j *Job) GetArtifacts() Artifacts {
	if j.Artifacts == nil {
		return Artifacts{}
	}
	return j.Artifacts.Data
}

// GetOverrides returns the per-job overrides, never nil.
func (j *Job) GetOverrides() Overrides {
	if j.Overrides == nil {
		return Overrides{}
	}
	return j.Overrides.Data
}

// GetPlatforms returns the platforms requested by the approval decision.
func (j *Job) GetPlatforms() []string {
	if j.Platforms == nil {
		return nil
	}
	return j.Platforms.Data
}

// HasCustomScript reports whether the job carries a full custom script, which
// bypasses script generation entirely.
func (j *Job) HasCustomScript() bool {
	return j.GetOverrides().CustomScript != ""
}
