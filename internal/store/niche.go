package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reelforge/reelforge/internal/store/model"
)

type Niche interface {
	Create(ctx context.Context, niche *model.Niche) (*model.Niche, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Niche, error)
	List(ctx context.Context) (model.NicheList, error)
	Update(ctx context.Context, niche *model.Niche) (*model.Niche, error)
	Delete(ctx context.Context, id uuid.UUID) error
	InitialMigration(ctx context.Context) error
}

type NicheStore struct {
	db *gorm.DB
}

// Make sure we conform to Niche interface
var _ Niche = (*NicheStore)(nil)

func NewNicheStore(db *gorm.DB) Niche {
	return &NicheStore{db: db}
}

func (s *NicheStore) InitialMigration(ctx context.Context) error {
	return s.getDB(ctx).AutoMigrate(&model.Niche{})
}

func (s *NicheStore) Create(ctx context.Context, niche *model.Niche) (*model.Niche, error) {
	if niche.ID == uuid.Nil {
		niche.ID = uuid.New()
	}
	result := s.getDB(ctx).Create(niche)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return niche, nil
}

func (s *NicheStore) Get(ctx context.Context, id uuid.UUID) (*model.Niche, error) {
	niche := model.NewNicheFromID(id)
	result := s.getDB(ctx).First(&niche)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return niche, nil
}

func (s *NicheStore) List(ctx context.Context) (model.NicheList, error) {
	var niches model.NicheList
	result := s.getDB(ctx).Order("created_at").Find(&niches)
	if result.Error != nil {
		return nil, result.Error
	}
	return niches, nil
}

func (s *NicheStore) Update(ctx context.Context, niche *model.Niche) (*model.Niche, error) {
	result := s.getDB(ctx).Model(niche).Clauses(clause.Returning{}).Updates(niche)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return niche, nil
}

func (s *NicheStore) Delete(ctx context.Context, id uuid.UUID) error {
	niche := model.NewNicheFromID(id)
	result := s.getDB(ctx).Unscoped().Delete(&niche)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return nil
}

func (s *NicheStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
