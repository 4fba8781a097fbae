package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "github.com/reelforge/reelforge/api/v1alpha1"
	"github.com/reelforge/reelforge/internal/providers"
	"github.com/reelforge/reelforge/internal/service"
	"github.com/reelforge/reelforge/internal/store"
	"github.com/reelforge/reelforge/internal/store/model"
)

// downPublisher reports itself unavailable.
type downPublisher struct {
	platform string
}

func (d downPublisher) Name() string { return "down-" + d.platform }
func (d downPublisher) Diagnose(context.Context) providers.Diagnostic {
	return providers.Diagnostic{
		Name:      d.Name(),
		Kind:      providers.KindPublish,
		Available: false,
		Severity:  providers.SeverityBlocking,
		Detail:    "connection refused",
	}
}
func (d downPublisher) Publish(context.Context, providers.PublishRequest) (*providers.PublishOutcome, error) {
	return nil, providers.Transient(errors.New("connection refused"))
}

var _ = Describe("health service", Ordered, func() {
	var (
		env       *testEnv
		healthSrv *service.HealthService
		ctx       context.Context
	)

	BeforeAll(func() {
		env = newTestEnv()
		healthSrv = service.NewHealthService(env.store, env.registry, env.cfg)
		ctx = context.TODO()
	})

	AfterAll(func() {
		env.close()
	})

	AfterEach(func() {
		env.cleanup()
	})

	It("reports ok when every active provider is available", func() {
		health, err := healthSrv.Health(ctx)
		Expect(err).To(BeNil())
		Expect(health.Status).To(Equal("ok"))
		Expect(health.Providers).NotTo(BeEmpty())
	})

	It("marks the configured defaults as active", func() {
		health, err := healthSrv.Health(ctx)
		Expect(err).To(BeNil())

		var topic *api.ProviderHealth
		for i := range health.Providers {
			p := health.Providers[i]
			if p.Kind == string(providers.KindTopic) && p.Name == env.cfg.Defaults.TopicProvider {
				topic = &p
			}
		}
		Expect(topic).NotTo(BeNil())
		Expect(topic.Active).To(BeTrue())
	})

	It("ignores an unavailable provider nothing selects", func() {
		env.registry.RegisterPublisher("pinterest", downPublisher{platform: "pinterest"})

		health, err := healthSrv.Health(ctx)
		Expect(err).To(BeNil())
		Expect(health.Status).To(Equal("ok"))

		var down *api.ProviderHealth
		for i := range health.Providers {
			p := health.Providers[i]
			if p.Kind == string(providers.KindPublish) && p.Name == "pinterest" {
				down = &p
			}
		}
		Expect(down).NotTo(BeNil())
		Expect(down.Available).To(BeFalse())
		Expect(down.Active).To(BeFalse())
	})

	It("degrades once an account selects the broken provider's platform", func() {
		env.registry.RegisterPublisher("pinterest", downPublisher{platform: "pinterest"})

		_, err := env.store.Account().Create(ctx, &model.Account{
			NicheID:  &store.DefaultNicheID,
			Platform: "pinterest",
			Name:     "pins-main",
		})
		Expect(err).To(BeNil())

		health, err := healthSrv.Health(ctx)
		Expect(err).To(BeNil())
		Expect(health.Status).To(Equal("degraded"))
	})
})
