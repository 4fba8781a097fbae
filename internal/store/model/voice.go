package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoiceProfile is a named voice definition consulted by the configuration
// resolver when a narration stage runs.
type VoiceProfile struct {
	gorm.Model
	ID              uuid.UUID `gorm:"primaryKey"`
	Name            string    `gorm:"uniqueIndex;not null"`
	Provider        string    `gorm:"not null"`
	ProviderVoiceID string    `gorm:"not null"`
}

type VoiceProfileList []VoiceProfile

func (v VoiceProfile) String() string {
	val, _ := json.Marshal(v)
	return string(val)
}
