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

var _ = Describe("niche service", Ordered, func() {
	var (
		env *testEnv
		ctx context.Context
	)

	BeforeAll(func() {
		env = newTestEnv()
		ctx = context.TODO()
	})

	AfterAll(func() {
		env.close()
	})

	AfterEach(func() {
		env.cleanup()
	})

	It("creates a niche with review_first as the default mode", func() {
		niche, err := env.nicheSrv.CreateNiche(ctx, api.NicheForm{Name: "space facts"})
		Expect(err).To(BeNil())
		Expect(niche.GenerationMode).To(Equal(api.GenerationModeReviewFirst))
		Expect(niche.Id).NotTo(Equal(uuid.Nil))
	})

	It("rejects a duplicate name", func() {
		_, err := env.nicheSrv.CreateNiche(ctx, api.NicheForm{Name: "history bites"})
		Expect(err).To(BeNil())

		_, err = env.nicheSrv.CreateNiche(ctx, api.NicheForm{Name: "history bites"})
		Expect(service.IsInvalidRequest(err)).To(BeTrue())
	})

	It("updates niche settings in place", func() {
		created, err := env.nicheSrv.CreateNiche(ctx, api.NicheForm{Name: "cooking"})
		Expect(err).To(BeNil())

		updated, err := env.nicheSrv.UpdateNiche(ctx, created.Id, api.NicheForm{
			Name:           "cooking",
			GenerationMode: api.GenerationModeAutoPublish,
			TTSProvider:    "piper",
		})
		Expect(err).To(BeNil())
		Expect(updated.GenerationMode).To(Equal(api.GenerationModeAutoPublish))
		Expect(updated.TTSProvider).To(Equal("piper"))
	})

	It("refuses to delete the default niche", func() {
		err := env.nicheSrv.DeleteNiche(ctx, store.DefaultNicheID)
		Expect(service.IsInvalidRequest(err)).To(BeTrue())
	})

	It("404s on an unknown niche", func() {
		err := env.nicheSrv.DeleteNiche(ctx, uuid.New())
		Expect(service.IsNotFound(err)).To(BeTrue())
	})

	It("lists the seeded default niche", func() {
		niches, err := env.nicheSrv.ListNiches(ctx)
		Expect(err).To(BeNil())

		names := make([]string, 0, len(niches))
		for _, n := range niches {
			names = append(names, n.Name)
		}
		Expect(names).To(ContainElement("general"))
	})
})
