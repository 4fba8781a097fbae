package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/reelforge/reelforge/internal/store"
	"github.com/reelforge/reelforge/internal/store/model"
)

// CreateJobFunc creates one automatic job for the niche. Supplied by the
// service layer so the autopilot stays decoupled from request handling.
type CreateJobFunc func(ctx context.Context, niche *model.Niche) error

// Autopilot turns niche posting schedules into automatic job creation. Each
// niche with a cron expression gets one cron entry; schedules are re-read
// every minute so edits take effect without a restart.
type Autopilot struct {
	store  store.Store
	create CreateJobFunc
	cron   *cron.Cron

	mu      sync.Mutex
	entries map[uuid.UUID]scheduledEntry

	log *zap.SugaredLogger
}

type scheduledEntry struct {
	id   cron.EntryID
	spec string
}

func NewAutopilot(s store.Store, create CreateJobFunc) *Autopilot {
	return &Autopilot{
		store:   s,
		create:  create,
		cron:    cron.New(),
		entries: make(map[uuid.UUID]scheduledEntry),
		log:     zap.S().Named("autopilot"),
	}
}

func (a *Autopilot) Run(ctx context.Context) {
	a.refresh(ctx)
	a.cron.Start()
	a.log.Info("autopilot started")

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			stopCtx := a.cron.Stop()
			<-stopCtx.Done()
			a.log.Info("autopilot stopped")
			return
		case <-ticker.C:
			a.refresh(ctx)
		}
	}
}

func (a *Autopilot) refresh(ctx context.Context) {
	niches, err := a.store.Niche().List(ctx)
	if err != nil {
		a.log.Errorf("failed to list niches: %s", err)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	seen := make(map[uuid.UUID]bool, len(niches))
	for i := range niches {
		niche := niches[i]
		if niche.PostingSchedule == "" {
			continue
		}
		seen[niche.ID] = true

		if entry, ok := a.entries[niche.ID]; ok {
			if entry.spec == niche.PostingSchedule {
				continue
			}
			a.cron.Remove(entry.id)
			delete(a.entries, niche.ID)
		}

		nicheID := niche.ID
		entryID, err := a.cron.AddFunc(niche.PostingSchedule, func() {
			a.trigger(nicheID)
		})
		if err != nil {
			a.log.Warnf("niche %q has an invalid posting schedule %q: %s", niche.Name, niche.PostingSchedule, err)
			continue
		}
		a.entries[niche.ID] = scheduledEntry{id: entryID, spec: niche.PostingSchedule}
		a.log.Infof("niche %q scheduled with %q", niche.Name, niche.PostingSchedule)
	}

	// drop entries of deleted niches and cleared schedules
	for id, entry := range a.entries {
		if !seen[id] {
			a.cron.Remove(entry.id)
			delete(a.entries, id)
		}
	}
}

// trigger re-reads the niche at fire time so a schedule edit racing the cron
// entry never creates a job with stale settings.
func (a *Autopilot) trigger(nicheID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	niche, err := a.store.Niche().Get(ctx, nicheID)
	if err != nil {
		a.log.Errorf("failed to load niche %s at fire time: %s", nicheID, err)
		return
	}

	if err := a.create(ctx, niche); err != nil {
		a.log.Errorf("failed to create automatic job for niche %q: %s", niche.Name, err)
		return
	}
	a.log.Infof("automatic job created for niche %q", niche.Name)
}
