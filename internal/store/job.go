package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reelforge/reelforge/internal/store/model"
)

// StagePatch carries the optional column updates applied together with a
// compare-and-swap stage transition.
type StagePatch struct {
	Topic            *string
	Artifacts        *model.Artifacts
	ErrorMessage     *string
	FailedStage      *string
	PublishRequested *bool
	Platforms        []string
	ResetAttempts    []string
	// ClearCancelRequest resets the deferred cancellation flag, used when an
	// external retry revives a cancelled job.
	ClearCancelRequest bool
}

type Job interface {
	Create(ctx context.Context, job *model.Job) (*model.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Job, error)
	List(ctx context.Context, filter *JobQueryFilter, opts *JobQueryOptions) (model.JobList, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateStage is the compare-and-swap at the heart of the pipeline: it
	// fails with ErrStageConflict, mutating nothing, unless the job is
	// currently in the from stage. It is the sole concurrency-safety
	// mechanism preventing two dispatch cycles from double-processing a job.
	UpdateStage(ctx context.Context, id uuid.UUID, from, to string, patch *StagePatch) (*model.Job, error)

	// ClaimStage marks a stage execution as started; it fails with
	// ErrStageConflict when the job left the stage or is already claimed.
	ClaimStage(ctx context.Context, id uuid.UUID, stage string) error
	// ReleaseStage drops the claim without advancing, leaving the job in
	// place for a later tick.
	ReleaseStage(ctx context.Context, id uuid.UUID) error

	// BeginAttempt increments the attempt counter of the given stage and
	// returns the new count. Called once per stage execution, after the
	// claim succeeded.
	BeginAttempt(ctx context.Context, id uuid.UUID, stage string) (int, error)

	// RecordTransientFailure stores the failure message, consumes one unit
	// of the lifetime retry budget and releases the claim so a later tick
	// retries the stage. It returns the total budget consumed so far.
	RecordTransientFailure(ctx context.Context, id uuid.UUID, message string) (int, error)

	SetProgress(ctx context.Context, id uuid.UUID, stage string, percent int) error
	SetError(ctx context.Context, id uuid.UUID, message string) error
	SetCancelRequested(ctx context.Context, id uuid.UUID) error

	AppendLog(ctx context.Context, id uuid.UUID, level, message string) error
	ListLogs(ctx context.Context, id uuid.UUID) (model.JobLogList, error)

	RecordPublishResult(ctx context.Context, result *model.PublishResult) error
	ListPublishResults(ctx context.Context, jobID uuid.UUID) (model.PublishResultList, error)

	CountByStage(ctx context.Context) (map[string]int, error)
	InitialMigration(ctx context.Context) error
}

type JobStore struct {
	db *gorm.DB
}

// Make sure we conform to Job interface
var _ Job = (*JobStore)(nil)

func NewJobStore(db *gorm.DB) Job {
	return &JobStore{db: db}
}

func (s *JobStore) InitialMigration(ctx context.Context) error {
	return s.getDB(ctx).AutoMigrate(&model.Job{}, &model.JobLog{}, &model.PublishResult{})
}

func (s *JobStore) Create(ctx context.Context, job *model.Job) (*model.Job, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Stage == "" {
		job.Stage = model.StageCreated
	}
	result := s.getDB(ctx).Create(job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return job, nil
}

func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job := model.NewJobFromID(id)
	result := s.getDB(ctx).Preload("PublishResults").First(&job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return job, nil
}

func (s *JobStore) List(ctx context.Context, filter *JobQueryFilter, opts *JobQueryOptions) (model.JobList, error) {
	var jobs model.JobList
	tx := s.getDB(ctx).Model(&model.Job{})

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	if result := tx.Find(&jobs); result.Error != nil {
		return nil, result.Error
	}
	return jobs, nil
}

func (s *JobStore) Delete(ctx context.Context, id uuid.UUID) error {
	job := model.NewJobFromID(id)
	result := s.getDB(ctx).Unscoped().Delete(&job)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return nil
}

func (s *JobStore) UpdateStage(ctx context.Context, id uuid.UUID, from, to string, patch *StagePatch) (*model.Job, error) {
	updates := map[string]any{
		"stage":            to,
		"stage_started_at": nil,
		"progress_percent": 0,
	}

	if patch != nil {
		if patch.Topic != nil {
			updates["topic"] = *patch.Topic
		}
		if patch.Artifacts != nil {
			updates["artifacts"] = model.MakeJSONField(*patch.Artifacts)
		}
		if patch.ErrorMessage != nil {
			updates["error_message"] = *patch.ErrorMessage
		}
		if patch.FailedStage != nil {
			updates["failed_stage"] = *patch.FailedStage
		}
		if patch.PublishRequested != nil {
			updates["publish_requested"] = *patch.PublishRequested
		}
		if patch.Platforms != nil {
			updates["platforms"] = model.MakeJSONField(patch.Platforms)
		}
		if patch.ClearCancelRequest {
			updates["cancel_requested"] = false
		}
	}

	if patch != nil && len(patch.ResetAttempts) > 0 {
		job, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		attempts := map[string]int{}
		if job.Attempts != nil {
			attempts = job.Attempts.Data
		}
		for _, stage := range patch.ResetAttempts {
			delete(attempts, stage)
		}
		updates["attempts"] = model.MakeJSONField(attempts)
	}

	result := s.getDB(ctx).Model(&model.Job{}).
		Where("id = ? AND stage = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("updating job stage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// distinguish a missing job from a lost race
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStageConflict
	}

	return s.Get(ctx, id)
}

func (s *JobStore) ClaimStage(ctx context.Context, id uuid.UUID, stage string) error {
	now := time.Now()
	result := s.getDB(ctx).Model(&model.Job{}).
		Where("id = ? AND stage = ? AND stage_started_at IS NULL", id, stage).
		Update("stage_started_at", &now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return ErrStageConflict
	}
	return nil
}

func (s *JobStore) ReleaseStage(ctx context.Context, id uuid.UUID) error {
	result := s.getDB(ctx).Model(&model.Job{}).
		Where("id = ?", id).
		Update("stage_started_at", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *JobStore) BeginAttempt(ctx context.Context, id uuid.UUID, stage string) (int, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}

	attempts := map[string]int{}
	if job.Attempts != nil && job.Attempts.Data != nil {
		attempts = job.Attempts.Data
	}
	attempts[stage]++

	result := s.getDB(ctx).Model(&model.Job{}).
		Where("id = ?", id).
		Update("attempts", model.MakeJSONField(attempts))
	if result.Error != nil {
		return 0, result.Error
	}

	return attempts[stage], nil
}

func (s *JobStore) RecordTransientFailure(ctx context.Context, id uuid.UUID, message string) (int, error) {
	result := s.getDB(ctx).Model(&model.Job{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"retries_used":     gorm.Expr("retries_used + 1"),
			"error_message":    message,
			"stage_started_at": nil,
			"progress_percent": 0,
		})
	if result.Error != nil {
		return 0, result.Error
	}

	job, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return job.RetriesUsed, nil
}

func (s *JobStore) SetProgress(ctx context.Context, id uuid.UUID, stage string, percent int) error {
	// progress is monotonic within the active stage
	result := s.getDB(ctx).Model(&model.Job{}).
		Where("id = ? AND stage = ? AND progress_percent < ?", id, stage, percent).
		Update("progress_percent", percent)
	return result.Error
}

func (s *JobStore) SetError(ctx context.Context, id uuid.UUID, message string) error {
	result := s.getDB(ctx).Model(&model.Job{}).
		Where("id = ?", id).
		Update("error_message", message)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *JobStore) SetCancelRequested(ctx context.Context, id uuid.UUID) error {
	result := s.getDB(ctx).Model(&model.Job{}).
		Where("id = ?", id).
		Update("cancel_requested", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *JobStore) AppendLog(ctx context.Context, id uuid.UUID, level, message string) error {
	entry := model.JobLog{JobID: id, Level: level, Message: message}
	return s.getDB(ctx).Create(&entry).Error
}

func (s *JobStore) ListLogs(ctx context.Context, id uuid.UUID) (model.JobLogList, error) {
	var logs model.JobLogList
	result := s.getDB(ctx).Where("job_id = ?", id).Order("id").Find(&logs)
	if result.Error != nil {
		return nil, result.Error
	}
	return logs, nil
}

func (s *JobStore) RecordPublishResult(ctx context.Context, result *model.PublishResult) error {
	return s.getDB(ctx).Create(result).Error
}

func (s *JobStore) ListPublishResults(ctx context.Context, jobID uuid.UUID) (model.PublishResultList, error) {
	var results model.PublishResultList
	tx := s.getDB(ctx).Where("job_id = ?", jobID).Order("id").Find(&results)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return results, nil
}

func (s *JobStore) CountByStage(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Stage string
		Count int
	}
	result := s.getDB(ctx).Model(&model.Job{}).
		Select("stage, count(*) as count").
		Group("stage").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Stage] = r.Count
	}
	return counts, nil
}

func (s *JobStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
