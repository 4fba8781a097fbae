package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	PublishStatusPublished      = "published"
	PublishStatusPrivate        = "private"
	PublishStatusManualRequired = "manual_required"
	PublishStatusFailed         = "failed"
)

// PublishResult records one publish attempt for one (job, platform) pair.
// Rows are append-only: a re-approval after a failure creates a new attempt
// instead of mutating history.
type PublishResult struct {
	ID        uint      `gorm:"primaryKey"`
	JobID     uuid.UUID `gorm:"not null;index"`
	Platform  string    `gorm:"not null;index"`
	Attempt   int       `gorm:"not null;default:1"`
	Status    string    `gorm:"not null"`
	RemoteURL string
	Error     string
	CreatedAt time.Time
}

type PublishResultList []PublishResult

func (p PublishResult) String() string {
	val, _ := json.Marshal(p)
	return string(val)
}

// Terminal reports whether this outcome ends the platform's publish flow.
// Only failed attempts can be retried.
func (p *PublishResult) Terminal() bool {
	return p.Status != PublishStatusFailed
}
