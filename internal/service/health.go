package service

import (
	"context"

	api "github.com/reelforge/reelforge/api/v1alpha1"
	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/providers"
	"github.com/reelforge/reelforge/internal/store"
)

// HealthService aggregates collaborator diagnostics into one health view.
// A blocking severity only degrades overall health when the provider is
// actually selected somewhere: a broken provider nobody uses is reported but
// does not count.
type HealthService struct {
	store    store.Store
	registry *providers.Registry
	cfg      *config.Config
}

func NewHealthService(s store.Store, registry *providers.Registry, cfg *config.Config) *HealthService {
	return &HealthService{store: s, registry: registry, cfg: cfg}
}

func (s *HealthService) Health(ctx context.Context) (*api.Health, error) {
	active, err := s.activeProviders(ctx)
	if err != nil {
		return nil, err
	}

	out := &api.Health{Status: "ok", Providers: []api.ProviderHealth{}}
	for _, d := range s.registry.Diagnostics(ctx) {
		isActive := active[providerKey(d.Kind, d.Name)]
		out.Providers = append(out.Providers, api.ProviderHealth{
			Name:      d.Name,
			Kind:      string(d.Kind),
			Available: d.Available,
			Severity:  api.HealthSeverity(d.Severity),
			Detail:    d.Detail,
			Active:    isActive,
		})

		if isActive && (d.Severity == providers.SeverityBlocking || !d.Available) {
			out.Status = "degraded"
		}
	}
	return out, nil
}

// activeProviders collects the providers currently selected by system
// defaults, niche settings and account platforms.
func (s *HealthService) activeProviders(ctx context.Context) (map[string]bool, error) {
	active := map[string]bool{
		providerKey(providers.KindTopic, s.cfg.Defaults.TopicProvider):       true,
		providerKey(providers.KindScript, s.cfg.Defaults.ScriptProvider):     true,
		providerKey(providers.KindNarration, s.cfg.Defaults.TTSProvider):     true,
		providerKey(providers.KindTranscription, s.cfg.Defaults.STTProvider): true,
		providerKey(providers.KindVideo, s.cfg.Defaults.VideoProvider):       true,
	}

	niches, err := s.store.Niche().List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range niches {
		n := niches[i]
		if n.TopicSource != "" {
			active[providerKey(providers.KindTopic, n.TopicSource)] = true
		}
		if n.TTSProvider != "" {
			active[providerKey(providers.KindNarration, n.TTSProvider)] = true
		}
		if n.VideoProvider != "" {
			active[providerKey(providers.KindVideo, n.VideoProvider)] = true
		}
	}

	// A publisher is active when at least one account targets its platform.
	accounts, err := s.store.Account().List(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		active[providerKey(providers.KindPublish, accounts[i].Platform)] = true
	}

	return active, nil
}

func providerKey(kind providers.Kind, name string) string {
	return string(kind) + "/" + name
}
