package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reelforge/reelforge/internal/store/model"
)

type Voice interface {
	Create(ctx context.Context, profile *model.VoiceProfile) (*model.VoiceProfile, error)
	Get(ctx context.Context, id uuid.UUID) (*model.VoiceProfile, error)
	GetByName(ctx context.Context, name string) (*model.VoiceProfile, error)
	List(ctx context.Context) (model.VoiceProfileList, error)
	Delete(ctx context.Context, id uuid.UUID) error
	InitialMigration(ctx context.Context) error
}

type VoiceStore struct {
	db *gorm.DB
}

// Make sure we conform to Voice interface
var _ Voice = (*VoiceStore)(nil)

func NewVoiceStore(db *gorm.DB) Voice {
	return &VoiceStore{db: db}
}

func (s *VoiceStore) InitialMigration(ctx context.Context) error {
	return s.getDB(ctx).AutoMigrate(&model.VoiceProfile{})
}

func (s *VoiceStore) Create(ctx context.Context, profile *model.VoiceProfile) (*model.VoiceProfile, error) {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	result := s.getDB(ctx).Create(profile)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return profile, nil
}

func (s *VoiceStore) Get(ctx context.Context, id uuid.UUID) (*model.VoiceProfile, error) {
	var profile model.VoiceProfile
	result := s.getDB(ctx).First(&profile, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &profile, nil
}

func (s *VoiceStore) GetByName(ctx context.Context, name string) (*model.VoiceProfile, error) {
	var profile model.VoiceProfile
	result := s.getDB(ctx).First(&profile, "name = ?", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &profile, nil
}

func (s *VoiceStore) List(ctx context.Context) (model.VoiceProfileList, error) {
	var profiles model.VoiceProfileList
	result := s.getDB(ctx).Order("name").Find(&profiles)
	if result.Error != nil {
		return nil, result.Error
	}
	return profiles, nil
}

func (s *VoiceStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.getDB(ctx).Unscoped().Delete(&model.VoiceProfile{}, "id = ?", id)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return nil
}

func (s *VoiceStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
