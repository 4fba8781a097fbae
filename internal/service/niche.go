package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/reelforge/reelforge/api/v1alpha1"
	"github.com/reelforge/reelforge/internal/store"
)

type NicheService struct {
	store store.Store
	log   *zap.SugaredLogger
}

func NewNicheService(s store.Store) *NicheService {
	return &NicheService{store: s, log: zap.S().Named("niche_service")}
}

func (s *NicheService) CreateNiche(ctx context.Context, form api.NicheForm) (*api.Niche, error) {
	niche, err := s.store.Niche().Create(ctx, nicheFormToModel(&form))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, &ErrInvalidRequest{Message: "a niche with this name already exists"}
		}
		return nil, err
	}
	out := nicheToAPI(niche)
	return &out, nil
}

func (s *NicheService) GetNiche(ctx context.Context, id uuid.UUID) (*api.Niche, error) {
	niche, err := s.store.Niche().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrNotFound("niche", id)
		}
		return nil, err
	}
	out := nicheToAPI(niche)
	return &out, nil
}

func (s *NicheService) ListNiches(ctx context.Context) (api.NicheList, error) {
	niches, err := s.store.Niche().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(api.NicheList, 0, len(niches))
	for i := range niches {
		out = append(out, nicheToAPI(&niches[i]))
	}
	return out, nil
}

func (s *NicheService) UpdateNiche(ctx context.Context, id uuid.UUID, form api.NicheForm) (*api.Niche, error) {
	if _, err := s.store.Niche().Get(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrNotFound("niche", id)
		}
		return nil, err
	}

	niche := nicheFormToModel(&form)
	niche.ID = id
	updated, err := s.store.Niche().Update(ctx, niche)
	if err != nil {
		return nil, err
	}
	out := nicheToAPI(updated)
	return &out, nil
}

func (s *NicheService) DeleteNiche(ctx context.Context, id uuid.UUID) error {
	if id == store.DefaultNicheID {
		return &ErrInvalidRequest{Message: "the default niche cannot be deleted"}
	}
	if _, err := s.store.Niche().Get(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrNotFound("niche", id)
		}
		return err
	}
	return s.store.Niche().Delete(ctx, id)
}
