package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	api "github.com/reelforge/reelforge/api/v1alpha1"
	"github.com/reelforge/reelforge/internal/store"
	"github.com/reelforge/reelforge/internal/store/model"
)

type AccountService struct {
	store store.Store
}

func NewAccountService(s store.Store) *AccountService {
	return &AccountService{store: s}
}

func (s *AccountService) CreateAccount(ctx context.Context, form api.AccountForm) (*api.Account, error) {
	if form.NicheId != nil {
		if _, err := s.store.Niche().Get(ctx, *form.NicheId); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return nil, NewErrNotFound("niche", *form.NicheId)
			}
			return nil, err
		}
	}

	mode := string(form.PublishMode)
	if mode == "" {
		mode = model.PublishModeAPI
	}
	account, err := s.store.Account().Create(ctx, &model.Account{
		NicheID:     form.NicheId,
		Platform:    form.Platform,
		Name:        form.Name,
		PublishMode: mode,
		VoiceID:     form.VoiceID,
	})
	if err != nil {
		return nil, err
	}

	out := accountToAPI(account)
	return &out, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, nicheID *uuid.UUID) ([]api.Account, error) {
	filter := store.NewAccountQueryFilter()
	if nicheID != nil {
		filter = filter.ByNicheID(*nicheID)
	}
	accounts, err := s.store.Account().List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]api.Account, 0, len(accounts))
	for i := range accounts {
		out = append(out, accountToAPI(&accounts[i]))
	}
	return out, nil
}

func (s *AccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.Account().Get(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrNotFound("account", id)
		}
		return err
	}
	return s.store.Account().Delete(ctx, id)
}
