package model

import (
	"time"

	"github.com/google/uuid"
)

// JobLog is one human-readable line in a job's history. Stage transitions,
// retries and prior publish outcomes are recorded here.
type JobLog struct {
	ID        uint      `gorm:"primaryKey"`
	JobID     uuid.UUID `gorm:"not null;index"`
	Level     string    `gorm:"not null;default:info"`
	Message   string    `gorm:"not null"`
	CreatedAt time.Time
}

type JobLogList []JobLog
