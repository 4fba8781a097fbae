package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/reelforge/reelforge/internal/store"
	"github.com/reelforge/reelforge/internal/store/model"
)

var _ = Describe("autopilot", Ordered, func() {
	var (
		gormdb *gorm.DB
		s      store.Store
		ctx    context.Context
	)

	BeforeAll(func() {
		gormdb, s = newTestStore(newTestConfig())
		ctx = context.TODO()
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM jobs;")
		gormdb.Exec("DELETE FROM niches;")
	})

	newScheduledNiche := func(schedule string) *model.Niche {
		niche, err := s.Niche().Create(ctx, &model.Niche{
			ID:              uuid.New(),
			Name:            "sched-" + uuid.NewString()[:8],
			GenerationMode:  model.GenerationModeAutoPublish,
			PostingSchedule: schedule,
		})
		Expect(err).To(BeNil())
		return niche
	}

	setSchedule := func(id uuid.UUID, schedule string) {
		tx := gormdb.Exec(fmt.Sprintf("UPDATE niches SET posting_schedule = '%s' WHERE id = '%s';", schedule, id))
		Expect(tx.Error).To(BeNil())
	}

	noopCreate := func(context.Context, *model.Niche) error { return nil }

	It("schedules every niche that carries a posting schedule", func() {
		a := NewAutopilot(s, noopCreate)
		scheduled := newScheduledNiche("0 18 * * *")
		newScheduledNiche("")

		a.refresh(ctx)

		Expect(a.entries).To(HaveLen(1))
		Expect(a.entries[scheduled.ID].spec).To(Equal("0 18 * * *"))
	})

	It("replaces the cron entry when the schedule changes", func() {
		a := NewAutopilot(s, noopCreate)
		niche := newScheduledNiche("0 18 * * *")

		a.refresh(ctx)
		first := a.entries[niche.ID].id

		setSchedule(niche.ID, "30 9 * * 1")
		a.refresh(ctx)

		Expect(a.entries).To(HaveLen(1))
		Expect(a.entries[niche.ID].id).NotTo(Equal(first))
		Expect(a.entries[niche.ID].spec).To(Equal("30 9 * * 1"))
	})

	It("drops the entry when the schedule is cleared", func() {
		a := NewAutopilot(s, noopCreate)
		niche := newScheduledNiche("0 18 * * *")

		a.refresh(ctx)
		Expect(a.entries).To(HaveLen(1))

		setSchedule(niche.ID, "")
		a.refresh(ctx)

		Expect(a.entries).To(BeEmpty())
	})

	It("drops the entry when the niche disappears", func() {
		a := NewAutopilot(s, noopCreate)
		niche := newScheduledNiche("0 18 * * *")

		a.refresh(ctx)
		Expect(a.entries).To(HaveLen(1))

		tx := gormdb.Exec(fmt.Sprintf("DELETE FROM niches WHERE id = '%s';", niche.ID))
		Expect(tx.Error).To(BeNil())
		a.refresh(ctx)

		Expect(a.entries).To(BeEmpty())
	})

	It("skips an invalid schedule without giving up on the rest", func() {
		a := NewAutopilot(s, noopCreate)
		newScheduledNiche("whenever")
		good := newScheduledNiche("15 12 * * *")

		a.refresh(ctx)

		Expect(a.entries).To(HaveLen(1))
		Expect(a.entries[good.ID].spec).To(Equal("15 12 * * *"))
	})

	It("creates the job from the niche's fire-time state", func() {
		var created *model.Niche
		a := NewAutopilot(s, func(_ context.Context, niche *model.Niche) error {
			created = niche
			return nil
		})
		niche := newScheduledNiche("0 18 * * *")

		setSchedule(niche.ID, "0 6 * * *")
		a.trigger(niche.ID)

		Expect(created).NotTo(BeNil())
		Expect(created.ID).To(Equal(niche.ID))
		Expect(created.PostingSchedule).To(Equal("0 6 * * *"))
	})
})
