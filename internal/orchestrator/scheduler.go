package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/lthibault/jitterbug/v2"

	"github.com/reelforge/reelforge/internal/store"
	"github.com/reelforge/reelforge/internal/store/model"
	"github.com/reelforge/reelforge/pkg/metrics"
)

// Run is the scheduler loop. Each tick lists the schedulable, unclaimed jobs
// in creation order and dispatches them up to the concurrency limit. The
// ticker is jittered so multiple replicas do not synchronize their polls.
func (o *Orchestrator) Run(ctx context.Context) {
	o.log.Infof("scheduler loop started, tick interval %s", o.tickInterval)

	ticker := jitterbug.New(o.tickInterval, &jitterbug.Norm{Stdev: 100 * time.Millisecond})
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.log.Info("scheduler loop stopped")
			return
		case <-ticker.C:
			o.tick(ctx)
		}
	}
}

func (o *Orchestrator) tick(ctx context.Context) {
	o.observeStageGauges(ctx)

	filter := store.NewJobQueryFilter().
		ByStage(model.SchedulableStages()...).
		SkipParkedApprovals().
		NotStarted()
	opts := store.NewJobQueryOptions().WithSortOrder(store.SortByCreatedTime)

	jobs, err := o.store.Job().List(ctx, filter, opts)
	if err != nil {
		o.log.Errorf("failed to list schedulable jobs: %s", err)
		return
	}

	for i := range jobs {
		job := jobs[i]
		if o.isInflight(job.ID) {
			continue
		}
		// Dispatch stays FIFO: when the pool is full the whole tick ends
		// rather than letting a younger job jump the queue.
		if !o.sem.TryAcquire(1) {
			return
		}
		if err := o.store.Job().ClaimStage(ctx, job.ID, job.Stage); err != nil {
			o.sem.Release(1)
			if !errors.Is(err, store.ErrStageConflict) && !errors.Is(err, store.ErrRecordNotFound) {
				o.log.Errorf("failed to claim job %s: %s", job.ID, err)
			}
			continue
		}

		o.markInflight(job.ID)
		metrics.IncreaseSchedulerDispatchMetric()
		go o.processJob(ctx, job.ID)
	}
}

func (o *Orchestrator) observeStageGauges(ctx context.Context) {
	counts, err := o.store.Job().CountByStage(ctx)
	if err != nil {
		o.log.Warnf("failed to count jobs by stage: %s", err)
		return
	}
	for _, stage := range model.AllStages() {
		metrics.UpdateJobsByStageMetric(stage, counts[stage])
	}
}
