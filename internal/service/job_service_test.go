package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "github.com/reelforge/reelforge/api/v1alpha1"
	"github.com/reelforge/reelforge/internal/service"
	"github.com/reelforge/reelforge/internal/store"
	"github.com/reelforge/reelforge/internal/store/model"
)

var _ = Describe("job service", Ordered, func() {
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

	jobInStage := func(stage string) *model.Job {
		job, err := env.store.Job().Create(ctx, &model.Job{
			NicheID: store.DefaultNicheID,
			Stage:   stage,
		})
		Expect(err).To(BeNil())
		return job
	}

	Context("creation", func() {
		It("creates a single queued job", func() {
			jobs, err := env.jobSrv.CreateJob(ctx, api.JobCreate{NicheId: store.DefaultNicheID, Topic: "the topic"})
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].Stage).To(Equal(api.JobStageCreated))
			Expect(jobs[0].Status).To(Equal(api.JobStatusQueued))
			Expect(jobs[0].Topic).To(Equal("the topic"))
			Expect(jobs[0].BatchId).To(BeNil())
		})

		It("creates count siblings sharing one batch id", func() {
			jobs, err := env.jobSrv.CreateJob(ctx, api.JobCreate{NicheId: store.DefaultNicheID, Count: 3})
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(3))

			batchID := jobs[0].BatchId
			Expect(batchID).NotTo(BeNil())
			for _, j := range jobs {
				Expect(j.BatchId).To(Equal(batchID))
			}

			listed, err := env.jobSrv.ListJobs(ctx, service.JobFilter{BatchID: batchID})
			Expect(err).To(BeNil())
			Expect(listed).To(HaveLen(3))
		})

		It("rejects an unknown niche", func() {
			_, err := env.jobSrv.CreateJob(ctx, api.JobCreate{NicheId: uuid.New()})
			Expect(service.IsNotFound(err)).To(BeTrue())
		})

		It("carries overrides and preselected platforms", func() {
			jobs, err := env.jobSrv.CreateJob(ctx, api.JobCreate{
				NicheId:   store.DefaultNicheID,
				Overrides: &api.ConfigOverrides{CustomScript: "exact words", VoiceID: "v1"},
				Platforms: []string{"youtube"},
			})
			Expect(err).To(BeNil())
			Expect(jobs[0].Overrides).NotTo(BeNil())
			Expect(jobs[0].Overrides.CustomScript).To(Equal("exact words"))
			Expect(jobs[0].Platforms).To(Equal([]string{"youtube"}))
		})
	})

	Context("deletion", func() {
		It("refuses to delete a job the pipeline still owns", func() {
			job := jobInStage(model.StageScriptReady)
			err := env.jobSrv.DeleteJob(ctx, job.ID)
			Expect(service.IsGateViolation(err)).To(BeTrue())
		})

		It("deletes a terminal job", func() {
			job := jobInStage(model.StageFailed)
			Expect(env.jobSrv.DeleteJob(ctx, job.ID)).To(BeNil())
			_, err := env.jobSrv.GetJob(ctx, job.ID)
			Expect(service.IsNotFound(err)).To(BeTrue())
		})
	})

	Context("review gate", func() {
		It("approves with a publish request and moves on", func() {
			job := jobInStage(model.StageAwaitingReview)

			out, err := env.jobSrv.Approve(ctx, job.ID, api.JobApprove{
				Platforms: []string{"youtube", "tiktok"},
				Publish:   true,
			})
			Expect(err).To(BeNil())
			Expect(out.Stage).To(Equal(api.JobStageApproved))
			Expect(out.Platforms).To(ConsistOf("youtube", "tiktok"))

			fresh, err := env.store.Job().Get(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(fresh.PublishRequested).To(BeTrue())
		})

		It("parks an approval without publish", func() {
			job := jobInStage(model.StageAwaitingReview)

			out, err := env.jobSrv.Approve(ctx, job.ID, api.JobApprove{
				Platforms: []string{"youtube"},
				Publish:   false,
			})
			Expect(err).To(BeNil())
			Expect(out.Stage).To(Equal(api.JobStageApproved))

			fresh, err := env.store.Job().Get(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(fresh.PublishRequested).To(BeFalse())
		})

		It("rejects terminally", func() {
			job := jobInStage(model.StageAwaitingReview)

			out, err := env.jobSrv.Reject(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(out.Stage).To(Equal(api.JobStageRejected))
			Expect(out.Status).To(Equal(api.JobStatusCompleted))
		})

		It("refuses a decision on a job not at the gate", func() {
			job := jobInStage(model.StageScriptReady)

			_, err := env.jobSrv.Approve(ctx, job.ID, api.JobApprove{Platforms: []string{"youtube"}, Publish: true})
			Expect(service.IsGateViolation(err)).To(BeTrue())

			_, err = env.jobSrv.Reject(ctx, job.ID)
			Expect(service.IsGateViolation(err)).To(BeTrue())
		})
	})

	Context("retry", func() {
		It("resumes a failed job from the interrupted stage", func() {
			job, err := env.store.Job().Create(ctx, &model.Job{
				NicheID:      store.DefaultNicheID,
				Stage:        model.StageFailed,
				FailedStage:  model.StageScriptReady,
				ErrorMessage: "tts down",
			})
			Expect(err).To(BeNil())
			_, err = env.store.Job().BeginAttempt(ctx, job.ID, model.StageScriptReady)
			Expect(err).To(BeNil())

			out, err := env.jobSrv.Retry(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(out.Stage).To(Equal(api.JobStageScriptReady))
			Expect(out.ErrorMessage).To(BeEmpty())

			fresh, err := env.store.Job().Get(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(fresh.FailedStage).To(BeEmpty())
			Expect(fresh.AttemptCount(model.StageScriptReady)).To(Equal(0))
		})

		It("revives a cancelled job and clears the cancel flag", func() {
			job, err := env.store.Job().Create(ctx, &model.Job{
				NicheID:     store.DefaultNicheID,
				Stage:       model.StageCancelled,
				FailedStage: model.StageAudioReady,
			})
			Expect(err).To(BeNil())
			Expect(env.store.Job().SetCancelRequested(ctx, job.ID)).To(BeNil())

			out, err := env.jobSrv.Retry(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(out.Stage).To(Equal(api.JobStageAudioReady))

			fresh, err := env.store.Job().Get(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(fresh.CancelRequested).To(BeFalse())
		})

		It("falls back to the start when no failed stage was recorded", func() {
			job := jobInStage(model.StageFailed)

			out, err := env.jobSrv.Retry(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(out.Stage).To(Equal(api.JobStageCreated))
		})

		It("refuses to retry a live job", func() {
			job := jobInStage(model.StagePublishing)
			_, err := env.jobSrv.Retry(ctx, job.ID)
			Expect(service.IsGateViolation(err)).To(BeTrue())
		})
	})

	Context("cancel", func() {
		It("cancels a queued job immediately", func() {
			job := jobInStage(model.StageAudioReady)

			out, err := env.jobSrv.Cancel(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(out.Stage).To(Equal(api.JobStageCancelled))
			Expect(out.Status).To(Equal(api.JobStatusCancelled))

			fresh, err := env.store.Job().Get(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(fresh.FailedStage).To(Equal(model.StageAudioReady))
		})

		It("defers cancellation of a claimed job to the stage boundary", func() {
			job := jobInStage(model.StageScriptReady)
			Expect(env.store.Job().ClaimStage(ctx, job.ID, job.Stage)).To(BeNil())

			out, err := env.jobSrv.Cancel(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(out.Stage).To(Equal(api.JobStageScriptReady))
			Expect(out.Status).To(Equal(api.JobStatusRunning))

			fresh, err := env.store.Job().Get(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(fresh.CancelRequested).To(BeTrue())
		})

		It("refuses to cancel a terminal job", func() {
			job := jobInStage(model.StagePublished)
			_, err := env.jobSrv.Cancel(ctx, job.ID)
			Expect(service.IsGateViolation(err)).To(BeTrue())
		})
	})

	Context("run now", func() {
		It("refuses a job waiting on review", func() {
			job := jobInStage(model.StageAwaitingReview)
			_, err := env.jobSrv.RunNow(ctx, job.ID)
			Expect(service.IsGateViolation(err)).To(BeTrue())
		})

		It("dispatches the current stage immediately", func() {
			job := jobInStage(model.StageCreated)

			_, err := env.jobSrv.RunNow(ctx, job.ID)
			Expect(err).To(BeNil())

			Eventually(func() api.JobStage {
				out, err := env.jobSrv.GetJob(ctx, job.ID)
				if err != nil {
					return ""
				}
				return out.Stage
			}, 5*time.Second, 50*time.Millisecond).Should(Equal(api.JobStageTopicReady))
		})
	})

	Context("status derivation", func() {
		It("reports the review gate as blocked", func() {
			job := jobInStage(model.StageAwaitingReview)
			out, err := env.jobSrv.GetJob(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(out.Status).To(Equal(api.JobStatusBlockedOnReview))
		})

		It("reports a claimed job as running", func() {
			job := jobInStage(model.StageVideoReady)
			Expect(env.store.Job().ClaimStage(ctx, job.ID, job.Stage)).To(BeNil())

			out, err := env.jobSrv.GetJob(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(out.Status).To(Equal(api.JobStatusRunning))
		})
	})

	Context("logs", func() {
		It("returns the job's log trail", func() {
			job := jobInStage(model.StageAwaitingReview)
			_, err := env.jobSrv.Reject(ctx, job.ID)
			Expect(err).To(BeNil())

			logs, err := env.jobSrv.JobLogs(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].Message).To(Equal("rejected at review"))
		})

		It("404s for an unknown job", func() {
			_, err := env.jobSrv.JobLogs(ctx, uuid.New())
			Expect(service.IsNotFound(err)).To(BeTrue())
		})
	})
})
