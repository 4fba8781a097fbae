// Package orchestrator drives jobs through the pipeline. A single scheduler
// loop polls the store for schedulable jobs, claims each one with a
// compare-and-swap and hands it to a stage executor; the executor's result is
// committed with a second compare-and-swap so a lost race never corrupts a
// job.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/events"
	"github.com/reelforge/reelforge/internal/orchestrator/resolver"
	"github.com/reelforge/reelforge/internal/providers"
	"github.com/reelforge/reelforge/internal/store"
	"github.com/reelforge/reelforge/internal/store/model"
	"github.com/reelforge/reelforge/pkg/metrics"
)

type Orchestrator struct {
	store    store.Store
	registry *providers.Registry
	producer *events.EventProducer

	defaults       resolver.Defaults
	topicProvider  string
	scriptProvider string
	sttProvider    string
	artifactDir    string

	tickInterval  time.Duration
	stageTimeout  time.Duration
	retryCeiling  int
	lifetimeLimit int

	sem      *semaphore.Weighted
	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}

	log *zap.SugaredLogger
}

// NewOrchestrator wires the scheduler against the store and the provider
// registry. producer may be nil, in which case lifecycle events are dropped.
func NewOrchestrator(cfg *config.Config, s store.Store, registry *providers.Registry, producer *events.EventProducer) *Orchestrator {
	return &Orchestrator{
		store:    s,
		registry: registry,
		producer: producer,
		defaults: resolver.Defaults{
			LLMModel:          cfg.Defaults.LLMModel,
			LLMTemperature:    cfg.Defaults.LLMTemperature,
			TTSProvider:       cfg.Defaults.TTSProvider,
			VoiceID:           cfg.Defaults.VoiceID,
			WhisperModel:      cfg.Defaults.WhisperModel,
			WhisperDevice:     cfg.Defaults.WhisperDevice,
			VideoProvider:     cfg.Defaults.VideoProvider,
			VideoModel:        cfg.Defaults.VideoModel,
			AspectRatio:       cfg.Defaults.AspectRatio,
			TargetDurationSec: cfg.Defaults.TargetDurationSec,
		},
		topicProvider:  cfg.Defaults.TopicProvider,
		scriptProvider: cfg.Defaults.ScriptProvider,
		sttProvider:    cfg.Defaults.STTProvider,
		artifactDir:    cfg.Service.ArtifactDir,
		tickInterval:   time.Duration(cfg.Orchestrator.TickInterval) * time.Second,
		stageTimeout:   time.Duration(cfg.Orchestrator.StageTimeoutSec) * time.Second,
		retryCeiling:   cfg.Orchestrator.RetryCeiling,
		lifetimeLimit:  cfg.Orchestrator.LifetimeRetryLimit,
		sem:            semaphore.NewWeighted(int64(cfg.Orchestrator.MaxConcurrentJobs)),
		inflight:       make(map[uuid.UUID]struct{}),
		log:            zap.S().Named("orchestrator"),
	}
}

// RunNow claims the job and executes its current stage immediately instead of
// waiting for the next tick. It returns ErrStageConflict when the job is not
// in a claimable state.
func (o *Orchestrator) RunNow(ctx context.Context, id uuid.UUID) error {
	job, err := o.store.Job().Get(ctx, id)
	if err != nil {
		return err
	}
	if model.IsTerminalStage(job.Stage) || job.Stage == model.StageAwaitingReview {
		return store.ErrStageConflict
	}
	if o.isInflight(id) {
		return nil
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	if err := o.store.Job().ClaimStage(ctx, id, job.Stage); err != nil {
		o.sem.Release(1)
		return err
	}
	o.markInflight(id)
	metrics.IncreaseSchedulerDispatchMetric()
	go o.processJob(context.WithoutCancel(ctx), id)
	return nil
}

func (o *Orchestrator) processJob(ctx context.Context, id uuid.UUID) {
	defer o.sem.Release(1)
	defer o.clearInflight(id)

	job, err := o.store.Job().Get(ctx, id)
	if err != nil {
		o.log.Errorf("failed to load job %s: %s", id, err)
		return
	}
	stage := job.Stage

	// A cancel requested while the job sat in the queue applies now, before
	// any work is done. The interrupted stage is recorded so an external
	// retry can resume from it.
	if job.CancelRequested {
		o.finalize(ctx, job, stage, model.StageCancelled, &store.StagePatch{FailedStage: &stage})
		return
	}

	niche, err := o.store.Niche().Get(ctx, job.NicheID)
	if err != nil {
		o.log.Errorf("failed to load niche %s of job %s: %s", job.NicheID, id, err)
		o.releaseClaim(ctx, id)
		return
	}

	attempt, err := o.store.Job().BeginAttempt(ctx, id, stage)
	if err != nil {
		o.log.Errorf("failed to record attempt for job %s: %s", id, err)
		o.releaseClaim(ctx, id)
		return
	}

	cfg := o.applyVoiceProfile(ctx, resolver.Resolve(job, niche, o.primaryAccount(ctx, niche), o.defaults))

	start := time.Now()
	execCtx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	next, patch, execErr := o.runStage(execCtx, job, niche, cfg)
	cancel()
	metrics.ObserveStageDuration(stage, time.Since(start))

	if execErr != nil {
		o.handleFailure(ctx, job, stage, attempt, execErr)
		return
	}

	// A cancel that arrived mid-execution wins over the result, which is
	// discarded at the stage boundary.
	if fresh, err := o.store.Job().Get(ctx, id); err == nil && fresh.CancelRequested {
		o.finalize(ctx, job, stage, model.StageCancelled, &store.StagePatch{FailedStage: &stage})
		return
	}

	if !o.finalize(ctx, job, stage, next, patch) {
		return
	}

	if next == model.StageAwaitingReview && !niche.ReviewRequired() {
		o.synthesizeApproval(ctx, job, niche)
	}
}

// finalize commits the stage transition. It reports whether the transition
// was applied; a lost compare-and-swap race is logged and swallowed.
func (o *Orchestrator) finalize(ctx context.Context, job *model.Job, from, to string, patch *store.StagePatch) bool {
	if _, err := o.store.Job().UpdateStage(ctx, job.ID, from, to, patch); err != nil {
		if err == store.ErrStageConflict {
			o.log.Warnf("job %s left stage %s before the transition to %s could apply", job.ID, from, to)
		} else {
			o.log.Errorf("failed to move job %s from %s to %s: %s", job.ID, from, to, err)
			o.releaseClaim(ctx, job.ID)
		}
		return false
	}

	msg := fmt.Sprintf("stage %s completed, moving to %s", from, to)
	if to == model.StageCancelled {
		msg = fmt.Sprintf("cancel request honored, stage %s abandoned", from)
	}
	o.appendLog(ctx, job.ID, "info", msg)
	o.emit(events.StageTransitionKind, events.StageTransitionEvent{
		JobID:     job.ID.String(),
		NicheID:   job.NicheID.String(),
		FromStage: from,
		ToStage:   to,
	})
	return true
}

// synthesizeApproval releases the review gate on behalf of an auto_publish
// niche. The gate stage itself is never skipped, so the audit trail shows the
// same transition chain as a human approval.
func (o *Orchestrator) synthesizeApproval(ctx context.Context, job *model.Job, niche *model.Niche) {
	platforms := o.nichePlatforms(ctx, niche)
	if len(platforms) == 0 {
		o.log.Warnf("niche %q is auto_publish but has no accounts, leaving job %s in review", niche.Name, job.ID)
		o.appendLog(ctx, job.ID, "warn", "auto approval skipped: niche has no publishing accounts")
		return
	}

	requested := true
	patch := &store.StagePatch{PublishRequested: &requested, Platforms: platforms}
	if _, err := o.store.Job().UpdateStage(ctx, job.ID, model.StageAwaitingReview, model.StageApproved, patch); err != nil {
		o.log.Errorf("failed to auto approve job %s: %s", job.ID, err)
		return
	}

	o.appendLog(ctx, job.ID, "info", "approved automatically by niche policy")
	o.emit(events.ReviewDecisionKind, events.ReviewDecisionEvent{
		JobID:     job.ID.String(),
		Approved:  true,
		Publish:   true,
		Platforms: platforms,
		Synthetic: true,
	})
}

func (o *Orchestrator) handleFailure(ctx context.Context, job *model.Job, stage string, attempt int, err error) {
	class, known := Classify(err)
	metrics.IncreaseStageFailuresMetric(stage, class)
	o.appendLog(ctx, job.ID, "error", fmt.Sprintf("stage %s attempt %d failed (%s): %s", stage, attempt, class, err))
	o.emit(events.StageFailureKind, events.StageFailureEvent{
		JobID:   job.ID.String(),
		Stage:   stage,
		Class:   class,
		Attempt: attempt,
		Message: err.Error(),
	})

	if class == ClassPermanent {
		o.failJob(ctx, job, stage, err.Error())
		return
	}
	if attempt >= o.retryCeiling {
		o.failJob(ctx, job, stage, fmt.Sprintf("retry ceiling reached after %d attempts: %s", attempt, err))
		return
	}

	used, rerr := o.store.Job().RecordTransientFailure(ctx, job.ID, err.Error())
	if rerr != nil {
		o.log.Errorf("failed to record transient failure for job %s: %s", job.ID, rerr)
		o.releaseClaim(ctx, job.ID)
		return
	}

	// Unclassified errors are retried like transient ones, but only within
	// the job's lifetime budget.
	if !known && used >= o.lifetimeLimit {
		o.failJob(ctx, job, stage, fmt.Sprintf("lifetime retry budget exhausted: %s", err))
		return
	}

	o.log.Infow("stage will be retried",
		"job", job.ID, "stage", stage, "attempt", attempt, "retries_used", used)
}

func (o *Orchestrator) failJob(ctx context.Context, job *model.Job, stage, message string) {
	patch := &store.StagePatch{ErrorMessage: &message, FailedStage: &stage}
	if _, err := o.store.Job().UpdateStage(ctx, job.ID, stage, model.StageFailed, patch); err != nil {
		o.log.Errorf("failed to mark job %s failed: %s", job.ID, err)
		return
	}
	o.emit(events.StageTransitionKind, events.StageTransitionEvent{
		JobID:     job.ID.String(),
		NicheID:   job.NicheID.String(),
		FromStage: stage,
		ToStage:   model.StageFailed,
	})
}

// applyVoiceProfile maps the resolved voice name onto the matching stored
// profile, swapping in the profile's provider and provider voice id. A name
// without a profile passes through as a literal provider voice id.
func (o *Orchestrator) applyVoiceProfile(ctx context.Context, cfg resolver.EffectiveConfig) resolver.EffectiveConfig {
	profile, err := o.store.Voice().GetByName(ctx, cfg.VoiceID)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			o.log.Warnf("failed to look up voice profile %q: %s", cfg.VoiceID, err)
		}
		return cfg
	}
	if profile.Provider != "" {
		cfg.TTSProvider = profile.Provider
	}
	cfg.VoiceID = profile.ProviderVoiceID
	return cfg
}

// primaryAccount picks the account whose voice participates in configuration
// resolution. The oldest account of the niche wins.
func (o *Orchestrator) primaryAccount(ctx context.Context, niche *model.Niche) *model.Account {
	accounts, err := o.store.Account().List(ctx, store.NewAccountQueryFilter().ByNicheID(niche.ID))
	if err != nil || len(accounts) == 0 {
		return nil
	}
	return &accounts[0]
}

func (o *Orchestrator) nichePlatforms(ctx context.Context, niche *model.Niche) []string {
	accounts, err := o.store.Account().List(ctx, store.NewAccountQueryFilter().ByNicheID(niche.ID))
	if err != nil {
		o.log.Errorf("failed to list accounts of niche %s: %s", niche.ID, err)
		return nil
	}
	seen := make(map[string]bool)
	platforms := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if seen[a.Platform] {
			continue
		}
		seen[a.Platform] = true
		platforms = append(platforms, a.Platform)
	}
	return platforms
}

func (o *Orchestrator) accountFor(ctx context.Context, nicheID uuid.UUID, platform string) *model.Account {
	accounts, err := o.store.Account().List(ctx, store.NewAccountQueryFilter().ByNicheID(nicheID).ByPlatform(platform))
	if err != nil || len(accounts) == 0 {
		return nil
	}
	return &accounts[0]
}

func (o *Orchestrator) artifactPath(id uuid.UUID, name string) string {
	return filepath.Join(o.artifactDir, id.String(), name)
}

// progressFunc feeds a running collaborator's progress back to the store.
// Writes are monotonic per stage, late or out of order reports are dropped.
func (o *Orchestrator) progressFunc(id uuid.UUID, stage string) providers.ProgressFunc {
	return func(percent int) {
		if percent < 0 {
			return
		}
		if percent > 100 {
			percent = 100
		}
		if err := o.store.Job().SetProgress(context.Background(), id, stage, percent); err != nil {
			o.log.Warnf("failed to record progress for job %s: %s", id, err)
		}
	}
}

func (o *Orchestrator) releaseClaim(ctx context.Context, id uuid.UUID) {
	if err := o.store.Job().ReleaseStage(ctx, id); err != nil {
		o.log.Errorf("failed to release claim on job %s: %s", id, err)
	}
}

func (o *Orchestrator) appendLog(ctx context.Context, id uuid.UUID, level, message string) {
	if err := o.store.Job().AppendLog(ctx, id, level, message); err != nil {
		o.log.Warnf("failed to append log for job %s: %s", id, err)
	}
}

func (o *Orchestrator) emit(kind string, body any) {
	if o.producer == nil {
		return
	}
	o.producer.Emit(kind, body)
}

func (o *Orchestrator) isInflight(id uuid.UUID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.inflight[id]
	return ok
}

func (o *Orchestrator) markInflight(id uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inflight[id] = struct{}{}
}

func (o *Orchestrator) clearInflight(id uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, id)
}
