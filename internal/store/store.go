package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reelforge/reelforge/internal/store/model"
)

// DefaultNicheID identifies the niche seeded on first start.
var DefaultNicheID = uuid.UUID{}

// DefaultVoiceID identifies the voice profile seeded on first start.
var DefaultVoiceID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Job() Job
	Niche() Niche
	Account() Account
	Voice() Voice
	InitialMigration() error
	Seed() error
	Close() error
}

type DataStore struct {
	db      *gorm.DB
	job     Job
	niche   Niche
	account Account
	voice   Voice
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:      db,
		job:     NewJobStore(db),
		niche:   NewNicheStore(db),
		account: NewAccountStore(db),
		voice:   NewVoiceStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Job() Job {
	return s.job
}

func (s *DataStore) Niche() Niche {
	return s.niche
}

func (s *DataStore) Account() Account {
	return s.account
}

func (s *DataStore) Voice() Voice {
	return s.voice
}

func (s *DataStore) InitialMigration() error {
	ctx := context.Background()
	if err := s.niche.InitialMigration(ctx); err != nil {
		return err
	}
	if err := s.account.InitialMigration(ctx); err != nil {
		return err
	}
	if err := s.voice.InitialMigration(ctx); err != nil {
		return err
	}
	return s.job.InitialMigration(ctx)
}

func (s *DataStore) Seed() error {
	tx, err := newTransaction(s.db)
	if err != nil {
		return err
	}

	// Create/update default niche
	niche := model.Niche{
		ID:             DefaultNicheID,
		Name:           "general",
		GenerationMode: model.GenerationModeReviewFirst,
	}

	if err := tx.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"generation_mode"}),
	}).Create(&niche).Error; err != nil {
		_ = tx.Rollback()
		return err
	}

	// Create/update default voice profile
	voice := model.VoiceProfile{
		ID:              DefaultVoiceID,
		Name:            "narrator",
		Provider:        "elevenlabs",
		ProviderVoiceID: "narrator-v2",
	}

	if err := tx.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider", "provider_voice_id"}),
	}).Create(&voice).Error; err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
