package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	api "github.com/reelforge/reelforge/api/v1alpha1"
	"github.com/reelforge/reelforge/internal/events"
	"github.com/reelforge/reelforge/internal/orchestrator"
	"github.com/reelforge/reelforge/internal/store"
	"github.com/reelforge/reelforge/internal/store/model"
)

// JobService implements the job control surface: creation, listing, the
// explicit run/retry/cancel actions and the review gate decisions. Every
// state-changing action goes through the store's compare-and-swap so a racing
// scheduler tick can never be overwritten.
type JobService struct {
	store    store.Store
	orch     *orchestrator.Orchestrator
	producer *events.EventProducer
	log      *zap.SugaredLogger
}

func NewJobService(s store.Store, orch *orchestrator.Orchestrator, producer *events.EventProducer) *JobService {
	return &JobService{
		store:    s,
		orch:     orch,
		producer: producer,
		log:      zap.S().Named("job_service"),
	}
}

// JobFilter narrows ListJobs.
type JobFilter struct {
	NicheID *uuid.UUID
	BatchID *uuid.UUID
	Stages  []string
}

// CreateJob creates one job, or count independent sibling jobs sharing a
// batch id. Siblings share topic and overrides but progress through the
// pipeline and the review gate independently.
func (s *JobService) CreateJob(ctx context.Context, form api.JobCreate) (api.JobList, error) {
	nicheID := form.NicheId
	if _, err := s.store.Niche().Get(ctx, nicheID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrNotFound("niche", nicheID)
		}
		return nil, err
	}

	count := form.Count
	if count <= 0 {
		count = 1
	}

	var batchID *uuid.UUID
	if count > 1 {
		id := uuid.New()
		batchID = &id
	}

	overrides := overridesToModel(form.Overrides)

	out := make(api.JobList, 0, count)
	for i := 0; i < count; i++ {
		job := &model.Job{
			NicheID: nicheID,
			BatchID: batchID,
			Topic:   form.Topic,
			Stage:   model.StageCreated,
		}
		if overrides != nil {
			job.Overrides = model.MakeJSONField(*overrides)
		}
		if len(form.Platforms) > 0 {
			job.Platforms = model.MakeJSONField(form.Platforms)
		}

		created, err := s.store.Job().Create(ctx, job)
		if err != nil {
			return nil, err
		}
		out = append(out, jobToAPI(created))
	}

	s.log.Infof("created %d job(s) for niche %s", count, nicheID)
	return out, nil
}

// CreateAutoJob is the autopilot hook: one job with no explicit topic, driven
// entirely by the niche's settings.
func (s *JobService) CreateAutoJob(ctx context.Context, niche *model.Niche) error {
	job := &model.Job{
		NicheID: niche.ID,
		Stage:   model.StageCreated,
	}
	_, err := s.store.Job().Create(ctx, job)
	return err
}

func (s *JobService) GetJob(ctx context.Context, id uuid.UUID) (*api.Job, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrNotFound("job", id)
		}
		return nil, err
	}
	out := jobToAPI(job)
	return &out, nil
}

func (s *JobService) ListJobs(ctx context.Context, filter JobFilter) (api.JobList, error) {
	qf := store.NewJobQueryFilter()
	if filter.NicheID != nil {
		qf = qf.ByNicheID(*filter.NicheID)
	}
	if filter.BatchID != nil {
		qf = qf.ByBatchID(*filter.BatchID)
	}
	if len(filter.Stages) > 0 {
		qf = qf.ByStage(filter.Stages...)
	}

	jobs, err := s.store.Job().List(ctx, qf, store.NewJobQueryOptions().WithSortOrder(store.SortByCreatedTime))
	if err != nil {
		return nil, err
	}

	out := make(api.JobList, 0, len(jobs))
	for i := range jobs {
		out = append(out, jobToAPI(&jobs[i]))
	}
	return out, nil
}

// DeleteJob removes a job. Deletion is an administrative action and only
// applies to jobs the pipeline is done with.
func (s *JobService) DeleteJob(ctx context.Context, id uuid.UUID) error {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrNotFound("job", id)
		}
		return err
	}
	if !model.IsTerminalStage(job.Stage) {
		return &ErrGateViolation{ID: id, Stage: job.Stage, Action: "delete"}
	}
	return s.store.Job().Delete(ctx, id)
}

// RunNow dispatches the job's current stage immediately instead of waiting
// for the next scheduler tick.
func (s *JobService) RunNow(ctx context.Context, id uuid.UUID) (*api.Job, error) {
	if err := s.orch.RunNow(ctx, id); err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return nil, NewErrNotFound("job", id)
		case errors.Is(err, store.ErrStageConflict):
			job, gerr := s.store.Job().Get(ctx, id)
			if gerr != nil {
				return nil, gerr
			}
			return nil, &ErrGateViolation{ID: id, Stage: job.Stage, Action: "run"}
		default:
			return nil, err
		}
	}
	return s.GetJob(ctx, id)
}

// Retry revives a failed or cancelled job. The attempt counter of the
// interrupted stage is reset and the job re-enters the forward flow from that
// stage; artifacts of completed stages are kept so nothing is redone.
func (s *JobService) Retry(ctx context.Context, id uuid.UUID) (*api.Job, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrNotFound("job", id)
		}
		return nil, err
	}

	if job.Stage != model.StageFailed && job.Stage != model.StageCancelled {
		return nil, &ErrGateViolation{ID: id, Stage: job.Stage, Action: "retry"}
	}
	resume := job.FailedStage
	if resume == "" {
		resume = model.StageCreated
	}

	empty := ""
	patch := &store.StagePatch{
		ErrorMessage:       &empty,
		FailedStage:        &empty,
		ResetAttempts:      []string{resume},
		ClearCancelRequest: true,
	}
	updated, err := s.store.Job().UpdateStage(ctx, id, job.Stage, resume, patch)
	if err != nil {
		if errors.Is(err, store.ErrStageConflict) {
			return nil, &ErrActionConflict{ID: id, Action: "retry"}
		}
		return nil, err
	}

	s.appendLog(ctx, id, "info", fmt.Sprintf("retry requested, resuming from %s", resume))
	out := jobToAPI(updated)
	return &out, nil
}

// Cancel stops a job. A job mid-stage-execution is not interrupted: the flag
// is recorded and applied at the next stage boundary, discarding the in
// flight result.
func (s *JobService) Cancel(ctx context.Context, id uuid.UUID) (*api.Job, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrNotFound("job", id)
		}
		return nil, err
	}
	if model.IsTerminalStage(job.Stage) {
		return nil, &ErrGateViolation{ID: id, Stage: job.Stage, Action: "cancel"}
	}

	if job.StageStartedAt != nil {
		// mid-execution, defer to the stage boundary
		if err := s.store.Job().SetCancelRequested(ctx, id); err != nil {
			return nil, err
		}
		s.appendLog(ctx, id, "info", "cancellation requested, applying at the next stage boundary")
		return s.GetJob(ctx, id)
	}

	stage := job.Stage
	patch := &store.StagePatch{FailedStage: &stage}
	if _, err := s.store.Job().UpdateStage(ctx, id, stage, model.StageCancelled, patch); err != nil {
		if errors.Is(err, store.ErrStageConflict) {
			// lost the race against a dispatch, fall back to the deferred path
			if err := s.store.Job().SetCancelRequested(ctx, id); err != nil {
				return nil, err
			}
			return s.GetJob(ctx, id)
		}
		return nil, err
	}

	s.appendLog(ctx, id, "info", "job cancelled")
	return s.GetJob(ctx, id)
}

// Approve releases the review gate. With publish=true the job continues into
// publishing on the requested platforms; with publish=false it parks at
// approved until an explicit run action.
func (s *JobService) Approve(ctx context.Context, id uuid.UUID, decision api.JobApprove) (*api.Job, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrNotFound("job", id)
		}
		return nil, err
	}
	if job.Stage != model.StageAwaitingReview {
		return nil, &ErrGateViolation{ID: id, Stage: job.Stage, Action: "approve"}
	}

	patch := &store.StagePatch{
		PublishRequested: &decision.Publish,
		Platforms:        decision.Platforms,
	}
	updated, err := s.store.Job().UpdateStage(ctx, id, model.StageAwaitingReview, model.StageApproved, patch)
	if err != nil {
		if errors.Is(err, store.ErrStageConflict) {
			return nil, &ErrActionConflict{ID: id, Action: "approve"}
		}
		return nil, err
	}

	s.appendLog(ctx, id, "info", fmt.Sprintf("approved for platforms %v, publish=%t", decision.Platforms, decision.Publish))
	s.emit(events.ReviewDecisionKind, events.ReviewDecisionEvent{
		JobID:     id.String(),
		Approved:  true,
		Publish:   decision.Publish,
		Platforms: decision.Platforms,
	})

	out := jobToAPI(updated)
	return &out, nil
}

// Reject turns the job down at the review gate. Rejection is terminal.
func (s *JobService) Reject(ctx context.Context, id uuid.UUID) (*api.Job, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrNotFound("job", id)
		}
		return nil, err
	}
	if job.Stage != model.StageAwaitingReview {
		return nil, &ErrGateViolation{ID: id, Stage: job.Stage, Action: "reject"}
	}

	updated, err := s.store.Job().UpdateStage(ctx, id, model.StageAwaitingReview, model.StageRejected, nil)
	if err != nil {
		if errors.Is(err, store.ErrStageConflict) {
			return nil, &ErrActionConflict{ID: id, Action: "reject"}
		}
		return nil, err
	}

	s.appendLog(ctx, id, "info", "rejected at review")
	s.emit(events.ReviewDecisionKind, events.ReviewDecisionEvent{
		JobID:    id.String(),
		Approved: false,
	})

	out := jobToAPI(updated)
	return &out, nil
}

func (s *JobService) JobLogs(ctx context.Context, id uuid.UUID) ([]api.JobLogEntry, error) {
	if _, err := s.store.Job().Get(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrNotFound("job", id)
		}
		return nil, err
	}

	logs, err := s.store.Job().ListLogs(ctx, id)
	if err != nil {
		return nil, err
	}

	out := make([]api.JobLogEntry, 0, len(logs))
	for _, l := range logs {
		out = append(out, api.JobLogEntry{
			Level:     l.Level,
			Message:   l.Message,
			CreatedAt: l.CreatedAt,
		})
	}
	return out, nil
}

func (s *JobService) appendLog(ctx context.Context, id uuid.UUID, level, message string) {
	if err := s.store.Job().AppendLog(ctx, id, level, message); err != nil {
		s.log.Warnf("failed to append log for job %s: %s", id, err)
	}
}

func (s *JobService) emit(kind string, body any) {
	if s.producer == nil {
		return
	}
	s.producer.Emit(kind, body)
}
