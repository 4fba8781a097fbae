package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/reelforge/reelforge/internal/events"
	"github.com/reelforge/reelforge/internal/orchestrator/resolver"
	"github.com/reelforge/reelforge/internal/providers"
	"github.com/reelforge/reelforge/internal/store"
	"github.com/reelforge/reelforge/internal/store/model"
	"github.com/reelforge/reelforge/pkg/metrics"
)

// runStage executes the work of the job's current stage and returns the stage
// to move to, together with the column updates to apply atomically with the
// transition. Executors never write the job row themselves; the transition
// compare-and-swap in the caller is the only commit point.
func (o *Orchestrator) runStage(ctx context.Context, job *model.Job, niche *model.Niche, cfg resolver.EffectiveConfig) (string, *store.StagePatch, error) {
	switch job.Stage {
	case model.StageCreated:
		return o.executeTopic(ctx, job, niche)
	case model.StageTopicReady:
		return o.executeScript(ctx, job, niche, cfg)
	case model.StageScriptReady:
		return o.executeNarration(ctx, job, cfg)
	case model.StageAudioReady:
		return o.executeSubtitles(ctx, job, cfg)
	case model.StageSubtitlesReady:
		return o.executeRender(ctx, job, cfg)
	case model.StageVideoReady:
		// Every job passes through the gate, review_first or not.
		return model.StageAwaitingReview, nil, nil
	case model.StageApproved:
		return o.executeApproved(job)
	case model.StagePublishing:
		return o.executePublish(ctx, job)
	default:
		return "", nil, providers.Permanent(fmt.Errorf("stage %q has no executor", job.Stage))
	}
}

func (o *Orchestrator) executeTopic(ctx context.Context, job *model.Job, niche *model.Niche) (string, *store.StagePatch, error) {
	// An explicit topic or a full custom script provided at creation skips
	// the pick entirely.
	if job.Topic != "" || job.HasCustomScript() {
		return model.StageTopicReady, nil, nil
	}

	name := niche.TopicSource
	if name == "" {
		name = o.topicProvider
	}
	src, err := o.registry.TopicSource(name)
	if err != nil {
		return "", nil, providers.Permanent(err)
	}

	topic, err := src.Pick(ctx, providers.TopicRequest{
		NicheName:   niche.Name,
		NichePrompt: niche.Prompt,
		SourceHint:  niche.TopicSource,
	})
	if err != nil {
		return "", nil, err
	}
	if topic == nil || topic.Title == "" {
		return "", nil, providers.Permanent(fmt.Errorf("topic source %q returned an empty topic", name))
	}

	return model.StageTopicReady, &store.StagePatch{Topic: &topic.Title}, nil
}

func (o *Orchestrator) executeScript(ctx context.Context, job *model.Job, niche *model.Niche, cfg resolver.EffectiveConfig) (string, *store.StagePatch, error) {
	artifacts := job.GetArtifacts()

	// A custom script bypasses generation, the override becomes the artifact.
	if job.HasCustomScript() {
		artifacts.Script = job.GetOverrides().CustomScript
		return model.StageScriptReady, &store.StagePatch{Artifacts: &artifacts}, nil
	}

	gen, err := o.registry.ScriptGenerator(o.scriptProvider)
	if err != nil {
		return "", nil, providers.Permanent(err)
	}

	script, err := gen.Generate(ctx, providers.ScriptRequest{
		Topic:             job.Topic,
		NichePrompt:       niche.Prompt,
		Model:             cfg.LLMModel,
		Temperature:       cfg.LLMTemperature,
		TargetDurationSec: cfg.TargetDurationSec,
	})
	if err != nil {
		return "", nil, err
	}
	if script == nil || script.Text() == "" {
		return "", nil, providers.Permanent(fmt.Errorf("script generator %q returned an empty script", o.scriptProvider))
	}

	artifacts.Script = script.Text()
	return model.StageScriptReady, &store.StagePatch{Artifacts: &artifacts}, nil
}

func (o *Orchestrator) executeNarration(ctx context.Context, job *model.Job, cfg resolver.EffectiveConfig) (string, *store.StagePatch, error) {
	artifacts := job.GetArtifacts()
	if artifacts.Script == "" {
		return "", nil, providers.Permanent(fmt.Errorf("job has no script artifact"))
	}

	synth, err := o.registry.NarrationSynthesizer(cfg.TTSProvider)
	if err != nil {
		return "", nil, providers.Permanent(err)
	}

	audioPath, err := synth.Synthesize(ctx, providers.SpeechRequest{
		Text:       artifacts.Script,
		VoiceID:    cfg.VoiceID,
		OutputPath: o.artifactPath(job.ID, "narration.mp3"),
	}, o.progressFunc(job.ID, job.Stage))
	if err != nil {
		return "", nil, err
	}

	artifacts.AudioPath = audioPath
	return model.StageAudioReady, &store.StagePatch{Artifacts: &artifacts}, nil
}

func (o *Orchestrator) executeSubtitles(ctx context.Context, job *model.Job, cfg resolver.EffectiveConfig) (string, *store.StagePatch, error) {
	artifacts := job.GetArtifacts()
	if artifacts.AudioPath == "" {
		return "", nil, providers.Permanent(fmt.Errorf("job has no audio artifact"))
	}

	transcriber, err := o.registry.Transcriber(o.sttProvider)
	if err != nil {
		return "", nil, providers.Permanent(err)
	}

	subtitlePath, err := transcriber.Transcribe(ctx, providers.TranscriptionRequest{
		AudioPath:  artifacts.AudioPath,
		Model:      cfg.WhisperModel,
		Device:     cfg.WhisperDevice,
		OutputPath: o.artifactPath(job.ID, "subtitles.srt"),
	})
	if err != nil {
		return "", nil, err
	}

	artifacts.SubtitlePath = subtitlePath
	return model.StageSubtitlesReady, &store.StagePatch{Artifacts: &artifacts}, nil
}

func (o *Orchestrator) executeRender(ctx context.Context, job *model.Job, cfg resolver.EffectiveConfig) (string, *store.StagePatch, error) {
	artifacts := job.GetArtifacts()
	if artifacts.AudioPath == "" || artifacts.SubtitlePath == "" {
		return "", nil, providers.Permanent(fmt.Errorf("job is missing audio or subtitle artifacts"))
	}

	renderer, err := o.registry.VideoRenderer(cfg.VideoProvider)
	if err != nil {
		return "", nil, providers.Permanent(err)
	}

	overrides := job.GetOverrides()
	videoPath, err := renderer.Render(ctx, providers.RenderRequest{
		Script:        artifacts.Script,
		AudioPath:     artifacts.AudioPath,
		SubtitlePath:  artifacts.SubtitlePath,
		Scenes:        overrides.Scenes,
		Model:         cfg.VideoModel,
		AspectRatio:   cfg.AspectRatio,
		StartImageURL: overrides.StartImageURL,
		EndImageURL:   overrides.EndImageURL,
		OutputPath:    o.artifactPath(job.ID, "video.mp4"),
	}, o.progressFunc(job.ID, job.Stage))
	if err != nil {
		return "", nil, err
	}

	artifacts.VideoPath = videoPath
	return model.StageVideoReady, &store.StagePatch{Artifacts: &artifacts}, nil
}

func (o *Orchestrator) executeApproved(job *model.Job) (string, *store.StagePatch, error) {
	if len(job.GetPlatforms()) == 0 {
		return "", nil, providers.Permanent(fmt.Errorf("approval carries no target platforms"))
	}
	return model.StagePublishing, nil, nil
}

// executePublish fans out to every platform that has no terminal outcome yet.
// Results are append-only rows; a platform whose last attempt failed is
// retried, one that reached published, private or manual_required is not
// touched again. The job reaches published only when every requested platform
// is terminal.
func (o *Orchestrator) executePublish(ctx context.Context, job *model.Job) (string, *store.StagePatch, error) {
	platforms := job.GetPlatforms()
	if len(platforms) == 0 {
		return "", nil, providers.Permanent(fmt.Errorf("no platforms requested for publishing"))
	}

	results, err := o.store.Job().ListPublishResults(ctx, job.ID)
	if err != nil {
		return "", nil, err
	}

	terminal := make(map[string]bool)
	attempts := make(map[string]int)
	for i := range results {
		r := results[i]
		if r.Attempt > attempts[r.Platform] {
			attempts[r.Platform] = r.Attempt
		}
		if r.Terminal() {
			terminal[r.Platform] = true
		}
	}

	pending := make([]string, 0, len(platforms))
	for _, p := range platforms {
		if !terminal[p] {
			pending = append(pending, p)
		}
	}
	if len(pending) == 0 {
		return model.StagePublished, nil, nil
	}

	artifacts := job.GetArtifacts()
	if artifacts.VideoPath == "" {
		return "", nil, providers.Permanent(fmt.Errorf("job has no video artifact"))
	}

	var mu sync.Mutex
	failed := make([]string, 0)

	g, gctx := errgroup.WithContext(ctx)
	for _, platform := range pending {
		platform := platform
		g.Go(func() error {
			outcome := o.publishOne(gctx, job, platform, attempts[platform]+1, artifacts.VideoPath)
			if outcome == model.PublishStatusFailed {
				mu.Lock()
				failed = append(failed, platform)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		return "", nil, providers.Transient(fmt.Errorf("publishing failed on %d of %d platforms: %v", len(failed), len(pending), failed))
	}
	return model.StagePublished, nil, nil
}

// publishOne runs one platform attempt and records its outcome. It returns
// the recorded status; errors never escape, they become a failed result row.
func (o *Orchestrator) publishOne(ctx context.Context, job *model.Job, platform string, attempt int, videoPath string) string {
	result := model.PublishResult{
		JobID:    job.ID,
		Platform: platform,
		Attempt:  attempt,
	}

	publisher, err := o.registry.Publisher(platform)
	if err != nil {
		result.Status = model.PublishStatusFailed
		result.Error = err.Error()
	} else {
		account := o.accountFor(ctx, job.NicheID, platform)
		req := providers.PublishRequest{
			VideoPath: videoPath,
			Caption:   job.Topic,
			Platform:  platform,
		}
		if account != nil {
			req.AccountName = account.Name
			req.PublishMode = account.PublishMode
		}

		outcome, err := publisher.Publish(ctx, req)
		if err != nil {
			result.Status = model.PublishStatusFailed
			result.Error = err.Error()
		} else {
			result.Status = outcome.Status
			result.RemoteURL = outcome.RemoteURL
		}
	}

	if err := o.store.Job().RecordPublishResult(ctx, &result); err != nil {
		o.log.Errorf("failed to record publish result for job %s on %s: %s", job.ID, platform, err)
	}

	metrics.IncreasePublishOutcomesMetric(platform, result.Status)
	o.emit(events.PublishOutcomeKind, events.PublishOutcomeEvent{
		JobID:     job.ID.String(),
		Platform:  platform,
		Attempt:   attempt,
		Status:    result.Status,
		RemoteURL: result.RemoteURL,
	})
	o.appendLog(ctx, job.ID, "info", fmt.Sprintf("publish attempt %d on %s: %s", attempt, platform, result.Status))

	return result.Status
}
