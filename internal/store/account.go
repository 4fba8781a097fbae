package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reelforge/reelforge/internal/store/model"
)

type Account interface {
	Create(ctx context.Context, account *model.Account) (*model.Account, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Account, error)
	List(ctx context.Context, filter *AccountQueryFilter) (model.AccountList, error)
	Delete(ctx context.Context, id uuid.UUID) error
	InitialMigration(ctx context.Context) error
}

type AccountStore struct {
	db *gorm.DB
}

// Make sure we conform to Account interface
var _ Account = (*AccountStore)(nil)

func NewAccountStore(db *gorm.DB) Account {
	return &AccountStore{db: db}
}

func (s *AccountStore) InitialMigration(ctx context.Context) error {
	return s.getDB(ctx).AutoMigrate(&model.Account{})
}

func (s *AccountStore) Create(ctx context.Context, account *model.Account) (*model.Account, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	result := s.getDB(ctx).Create(account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return account, nil
}

func (s *AccountStore) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account := model.NewAccountFromID(id)
	result := s.getDB(ctx).First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return account, nil
}

func (s *AccountStore) List(ctx context.Context, filter *AccountQueryFilter) (model.AccountList, error) {
	var accounts model.AccountList
	tx := s.getDB(ctx).Model(&model.Account{})
	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if result := tx.Order("created_at").Find(&accounts); result.Error != nil {
		return nil, result.Error
	}
	return accounts, nil
}

func (s *AccountStore) Delete(ctx context.Context, id uuid.UUID) error {
	account := model.NewAccountFromID(id)
	result := s.getDB(ctx).Unscoped().Delete(&account)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return nil
}

func (s *AccountStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
