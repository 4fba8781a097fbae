package store_test

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

const (
	insertNicheStm        = "INSERT INTO niches (id, name, generation_mode) VALUES ('%s', '%s', 'review_first');"
	insertJobStm         = "INSERT INTO jobs (id, niche_id, stage, retries_used, progress_percent, created_at) VALUES ('%s', '%s', '%s', 0, 0, datetime('now'));"
	insertClaimedJobStm  = "INSERT INTO jobs (id, niche_id, stage, retries_used, progress_percent, stage_started_at, created_at) VALUES ('%s', '%s', '%s', 0, 0, datetime('now'), datetime('now'));"
	insertApprovedJobStm = "INSERT INTO jobs (id, niche_id, stage, retries_used, progress_percent, publish_requested, created_at) VALUES ('%s', '%s', 'approved', 0, 0, %t, datetime('now'));"
	insertPublishRowsStm = "INSERT INTO publish_results (job_id, platform, attempt, status) VALUES ('%s', '%s', %d, '%s');"
)

var _ = Describe("job store", Ordered, func() {
	var (
		s       store.Store
		gormdb  *gorm.DB
		nicheID uuid.UUID
	)

	BeforeAll(func() {
		gormdb, s = newTestDB()
		nicheID = uuid.New()
		tx := gormdb.Exec(fmt.Sprintf(insertNicheStm, nicheID, "test-niche"))
		Expect(tx.Error).To(BeNil())
	})

	AfterAll(func() {
		gormdb.Exec("DELETE FROM niches;")
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM publish_results;")
		gormdb.Exec("DELETE FROM job_logs;")
		gormdb.Exec("DELETE FROM jobs;")
	})

	Context("create", func() {
		It("fills in id and initial stage", func() {
			job, err := s.Job().Create(context.TODO(), &model.Job{NicheID: nicheID})
			Expect(err).To(BeNil())
			Expect(job.ID).NotTo(Equal(uuid.Nil))
			Expect(job.Stage).To(Equal(model.StageCreated))
		})
	})

	Context("update stage", func() {
		It("advances when the from stage matches", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, nicheID, model.StageCreated))
			Expect(tx.Error).To(BeNil())

			topic := "ai tools"
			job, err := s.Job().UpdateStage(context.TODO(), jobID, model.StageCreated, model.StageTopicReady, &store.StagePatch{Topic: &topic})
			Expect(err).To(BeNil())
			Expect(job.Stage).To(Equal(model.StageTopicReady))
			Expect(job.Topic).To(Equal("ai tools"))
		})

		It("returns a conflict when the from stage does not match", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, nicheID, model.StageScriptReady))
			Expect(tx.Error).To(BeNil())

			_, err := s.Job().UpdateStage(context.TODO(), jobID, model.StageCreated, model.StageTopicReady, nil)
			Expect(err).To(MatchError(store.ErrStageConflict))

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.Stage).To(Equal(model.StageScriptReady))
		})

		It("lets exactly one of two racing updates win", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, nicheID, model.StageCreated))
			Expect(tx.Error).To(BeNil())

			_, firstErr := s.Job().UpdateStage(context.TODO(), jobID, model.StageCreated, model.StageTopicReady, nil)
			_, secondErr := s.Job().UpdateStage(context.TODO(), jobID, model.StageCreated, model.StageTopicReady, nil)

			Expect(firstErr).To(BeNil())
			Expect(secondErr).To(MatchError(store.ErrStageConflict))
		})

		It("returns not found for an unknown job", func() {
			_, err := s.Job().UpdateStage(context.TODO(), uuid.New(), model.StageCreated, model.StageTopicReady, nil)
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		It("clears the claim and progress on transition", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertClaimedJobStm, jobID, nicheID, model.StageCreated))
			Expect(tx.Error).To(BeNil())

			job, err := s.Job().UpdateStage(context.TODO(), jobID, model.StageCreated, model.StageTopicReady, nil)
			Expect(err).To(BeNil())
			Expect(job.StageStartedAt).To(BeNil())
			Expect(job.ProgressPercent).To(Equal(0))
		})

		It("resets the attempt counter of the named stage", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, nicheID, model.StageScriptReady))
			Expect(tx.Error).To(BeNil())

			_, err := s.Job().BeginAttempt(context.TODO(), jobID, model.StageScriptReady)
			Expect(err).To(BeNil())
			_, err = s.Job().BeginAttempt(context.TODO(), jobID, model.StageScriptReady)
			Expect(err).To(BeNil())

			job, err := s.Job().UpdateStage(context.TODO(), jobID, model.StageScriptReady, model.StageFailed, &store.StagePatch{ResetAttempts: []string{model.StageScriptReady}})
			Expect(err).To(BeNil())
			Expect(job.AttemptCount(model.StageScriptReady)).To(Equal(0))
		})
	})

	Context("claim", func() {
		It("claims an unclaimed job", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, nicheID, model.StageCreated))
			Expect(tx.Error).To(BeNil())

			Expect(s.Job().ClaimStage(context.TODO(), jobID, model.StageCreated)).To(BeNil())

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.StageStartedAt).NotTo(BeNil())
		})

		It("rejects a second claim on the same stage", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, nicheID, model.StageCreated))
			Expect(tx.Error).To(BeNil())

			Expect(s.Job().ClaimStage(context.TODO(), jobID, model.StageCreated)).To(BeNil())
			err := s.Job().ClaimStage(context.TODO(), jobID, model.StageCreated)
			Expect(err).To(MatchError(store.ErrStageConflict))
		})

		It("releases a claim without advancing", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertClaimedJobStm, jobID, nicheID, model.StageCreated))
			Expect(tx.Error).To(BeNil())

			Expect(s.Job().ReleaseStage(context.TODO(), jobID)).To(BeNil())

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.Stage).To(Equal(model.StageCreated))
			Expect(job.StageStartedAt).To(BeNil())
		})
	})

	Context("attempts", func() {
		It("counts attempts per stage", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, nicheID, model.StageScriptReady))
			Expect(tx.Error).To(BeNil())

			count, err := s.Job().BeginAttempt(context.TODO(), jobID, model.StageScriptReady)
			Expect(err).To(BeNil())
			Expect(count).To(Equal(1))

			count, err = s.Job().BeginAttempt(context.TODO(), jobID, model.StageScriptReady)
			Expect(err).To(BeNil())
			Expect(count).To(Equal(2))

			count, err = s.Job().BeginAttempt(context.TODO(), jobID, model.StageAudioReady)
			Expect(err).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("consumes the lifetime budget and releases the claim on a transient failure", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertClaimedJobStm, jobID, nicheID, model.StageScriptReady))
			Expect(tx.Error).To(BeNil())

			used, err := s.Job().RecordTransientFailure(context.TODO(), jobID, "tts timed out")
			Expect(err).To(BeNil())
			Expect(used).To(Equal(1))

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.Stage).To(Equal(model.StageScriptReady))
			Expect(job.StageStartedAt).To(BeNil())
			Expect(job.ErrorMessage).To(Equal("tts timed out"))

			used, err = s.Job().RecordTransientFailure(context.TODO(), jobID, "tts timed out again")
			Expect(err).To(BeNil())
			Expect(used).To(Equal(2))
		})
	})

	Context("progress", func() {
		It("only moves forward within the active stage", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, nicheID, model.StageScriptReady))
			Expect(tx.Error).To(BeNil())

			Expect(s.Job().SetProgress(context.TODO(), jobID, model.StageScriptReady, 40)).To(BeNil())
			Expect(s.Job().SetProgress(context.TODO(), jobID, model.StageScriptReady, 20)).To(BeNil())

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.ProgressPercent).To(Equal(40))
		})
	})

	Context("list", func() {
		It("filters by stage in creation order", func() {
			first := uuid.New()
			second := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, first, nicheID, model.StageCreated))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, second, nicheID, model.StageScriptReady))
			Expect(tx.Error).To(BeNil())

			jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter().ByStage(model.StageCreated), store.NewJobQueryOptions().WithSortOrder(store.SortByCreatedTime))
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].ID).To(Equal(first))
		})

		It("skips approvals that did not request publishing", func() {
			parked := uuid.New()
			publishing := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertApprovedJobStm, parked, nicheID, false))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertApprovedJobStm, publishing, nicheID, true))
			Expect(tx.Error).To(BeNil())

			jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter().ByStage(model.StageApproved).SkipParkedApprovals(), nil)
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].ID).To(Equal(publishing))
		})

		It("excludes claimed jobs with NotStarted", func() {
			claimed := uuid.New()
			free := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertClaimedJobStm, claimed, nicheID, model.StageCreated))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertJobStm, free, nicheID, model.StageCreated))
			Expect(tx.Error).To(BeNil())

			jobs, err := s.Job().List(context.TODO(), store.NewJobQueryFilter().NotStarted(), nil)
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].ID).To(Equal(free))
		})
	})

	Context("publish results", func() {
		It("appends attempts without overwriting history", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, nicheID, model.StagePublishing))
			Expect(tx.Error).To(BeNil())

			Expect(s.Job().RecordPublishResult(context.TODO(), &model.PublishResult{
				JobID: jobID, Platform: "tiktok", Attempt: 1, Status: model.PublishStatusFailed, Error: "rate limited",
			})).To(BeNil())
			Expect(s.Job().RecordPublishResult(context.TODO(), &model.PublishResult{
				JobID: jobID, Platform: "tiktok", Attempt: 2, Status: model.PublishStatusPublished,
			})).To(BeNil())

			results, err := s.Job().ListPublishResults(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(results).To(HaveLen(2))
			Expect(results[0].Attempt).To(Equal(1))
			Expect(results[0].Terminal()).To(BeFalse())
			Expect(results[1].Terminal()).To(BeTrue())
		})

		It("preloads results on get", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, nicheID, model.StagePublished))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertPublishRowsStm, jobID, "youtube", 1, model.PublishStatusPublished))
			Expect(tx.Error).To(BeNil())

			job, err := s.Job().Get(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(job.PublishResults).To(HaveLen(1))
		})
	})

	Context("logs", func() {
		It("keeps entries in order", func() {
			jobID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertJobStm, jobID, nicheID, model.StageCreated))
			Expect(tx.Error).To(BeNil())

			Expect(s.Job().AppendLog(context.TODO(), jobID, "info", "first")).To(BeNil())
			Expect(s.Job().AppendLog(context.TODO(), jobID, "error", "second")).To(BeNil())

			logs, err := s.Job().ListLogs(context.TODO(), jobID)
			Expect(err).To(BeNil())
			Expect(logs).To(HaveLen(2))
			Expect(logs[0].Message).To(Equal("first"))
			Expect(logs[1].Level).To(Equal("error"))
		})
	})
})
