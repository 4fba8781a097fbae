package service_test

import (
	"context"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "github.com/reelforge/reelforge/api/v1alpha1"
	"github.com/reelforge/reelforge/internal/service"
	"github.com/reelforge/reelforge/internal/store"
)

var _ = Describe("voice service", Ordered, func() {
	var (
		env *testEnv
		srv *service.VoiceService
		ctx context.Context
	)

	BeforeAll(func() {
		env = newTestEnv()
		srv = service.NewVoiceService(env.store)
		ctx = context.TODO()
	})

	AfterAll(func() {
		env.close()
	})

	AfterEach(func() {
		env.cleanup()
	})

	It("seeds a default narrator profile", func() {
		seeded, err := env.store.Voice().Get(ctx, store.DefaultVoiceID)
		Expect(err).To(BeNil())
		Expect(seeded.Name).To(Equal("narrator"))
		Expect(seeded.Provider).NotTo(BeEmpty())
		Expect(seeded.ProviderVoiceID).NotTo(BeEmpty())

		voices, err := srv.ListVoices(ctx)
		Expect(err).To(BeNil())
		names := make([]string, 0, len(voices))
		for _, v := range voices {
			names = append(names, v.Name)
		}
		Expect(names).To(ContainElement("narrator"))
	})

	It("creates and lists profiles", func() {
		created, err := srv.CreateVoice(ctx, api.VoiceProfileForm{
			Name:            "anchor",
			Provider:        "polly",
			ProviderVoiceID: "Joanna",
		})
		Expect(err).To(BeNil())
		Expect(created.Id).NotTo(Equal(uuid.Nil))

		voices, err := srv.ListVoices(ctx)
		Expect(err).To(BeNil())
		Expect(voices).To(HaveLen(2))
	})

	It("rejects a duplicate profile name", func() {
		_, err := srv.CreateVoice(ctx, api.VoiceProfileForm{
			Name:            "narrator",
			Provider:        "polly",
			ProviderVoiceID: "Matthew",
		})
		Expect(service.IsInvalidRequest(err)).To(BeTrue())
	})

	It("returns not found when deleting an unknown profile", func() {
		err := srv.DeleteVoice(ctx, uuid.New())
		Expect(service.IsNotFound(err)).To(BeTrue())
	})
})
