package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PublishModeAPI     = "api"
	PublishModeBrowser = "browser"
	PublishModeHybrid  = "hybrid"
)

// Account is a publishing identity for one platform. Its voice id, when set,
// is the third layer of configuration resolution.
type Account struct {
	gorm.Model
	ID          uuid.UUID  `gorm:"primaryKey"`
	NicheID     *uuid.UUID `gorm:"index"`
	Platform    string     `gorm:"not null;index"`
	Name        string     `gorm:"not null"`
	PublishMode string     `gorm:"not null;default:api"`
	VoiceID     string
}

type AccountList []Account

func (a Account) String() string {
	val, _ := json.Marshal(a)
	return string(val)
}

func NewAccountFromID(id uuid.UUID) *Account {
	return &Account{ID: id}
}
