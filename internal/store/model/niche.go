package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GenerationModeReviewFirst = "review_first"
	GenerationModeAutoPublish = "auto_publish"
)

// Niche is a content vertical. It owns jobs and supplies the second layer of
// configuration resolution.
type Niche struct {
	gorm.Model
	ID             uuid.UUID `gorm:"primaryKey"`
	Name           string    `gorm:"uniqueIndex;not null"`
	Prompt         string
	GenerationMode string `gorm:"not null;default:review_first"`
	TopicSource    string

	LLMModel       string
	LLMTemperature *float64
	TTSProvider    string
	VoiceID        string
	WhisperModel   string
	WhisperDevice  string
	VideoProvider  string
	VideoModel     string
	AspectRatio    string

	// PostingSchedule is a cron expression driving the autopilot trigger for
	// auto_publish niches. Empty means manual creation only.
	PostingSchedule string

	Jobs     []Job     `gorm:"constraint:OnDelete:CASCADE;"`
	Accounts []Account `gorm:"constraint:OnDelete:CASCADE;"`
}

type NicheList []Niche

func (n Niche) String() string {
	val, _ := json.Marshal(n)
	return string(val)
}

func NewNicheFromID(id uuid.UUID) *Niche {
	return &Niche{ID: id}
}

// ReviewRequired reports whether the review gate must hold jobs of this niche
// for a human decision.
func (n *Niche) ReviewRequired() bool {
	return n.GenerationMode != GenerationModeAutoPublish
}
