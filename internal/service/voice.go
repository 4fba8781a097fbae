package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	api "github.com/reelforge/reelforge/api/v1alpha1"
	"github.com/reelforge/reelforge/internal/store"
	"github.com/reelforge/reelforge/internal/store/model"
)

type VoiceService struct {
	store store.Store
}

func NewVoiceService(s store.Store) *VoiceService {
	return &VoiceService{store: s}
}

func (s *VoiceService) CreateVoice(ctx context.Context, form api.VoiceProfileForm) (*api.VoiceProfile, error) {
	voice, err := s.store.Voice().Create(ctx, &model.VoiceProfile{
		Name:            form.Name,
		Provider:        form.Provider,
		ProviderVoiceID: form.ProviderVoiceID,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, &ErrInvalidRequest{Message: "a voice profile with this name already exists"}
		}
		return nil, err
	}
	out := voiceToAPI(voice)
	return &out, nil
}

func (s *VoiceService) ListVoices(ctx context.Context) ([]api.VoiceProfile, error) {
	voices, err := s.store.Voice().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]api.VoiceProfile, 0, len(voices))
	for i := range voices {
		out = append(out, voiceToAPI(&voices[i]))
	}
	return out, nil
}

func (s *VoiceService) DeleteVoice(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.Voice().Get(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrNotFound("voice profile", id)
		}
		return err
	}
	return s.store.Voice().Delete(ctx, id)
}
