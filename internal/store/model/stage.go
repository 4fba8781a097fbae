package model

// Pipeline stages in fixed forward order, plus the terminal states.
const (
	StageCreated        = "created"
	StageTopicReady     = "topic_ready"
	StageScriptReady    = "script_ready"
	StageAudioReady     = "audio_ready"
	StageSubtitlesReady = "subtitles_ready"
	StageVideoReady     = "video_ready"
	StageAwaitingReview = "awaiting_review"
	StageApproved       = "approved"
	StagePublishing     = "publishing"
	StagePublished      = "published"
	StageRejected       = "rejected"
	StageFailed         = "failed"
	StageCancelled      = "cancelled"
)

var forwardOrder = []string{
	StageCreated,
	StageTopicReady,
	StageScriptReady,
	StageAudioReady,
	StageSubtitlesReady,
	StageVideoReady,
	StageAwaitingReview,
	StageApproved,
	StagePublishing,
	StagePublished,
}

var stageRank = func() map[string]int {
	m := make(map[string]int, len(forwardOrder))
	for i, s := range forwardOrder {
		m[s] = i
	}
	return m
}()

// StageRank returns the position of a stage in the forward order, or -1 for
// terminal failure states that sit outside it.
func StageRank(stage string) int {
	if r, ok := stageRank[stage]; ok {
		return r
	}
	return -1
}

// IsTerminalStage reports whether a job in this stage accepts no further
// automatic transitions.
func IsTerminalStage(stage string) bool {
	switch stage {
	case StagePublished, StageRejected, StageFailed, StageCancelled:
		return true
	}
	return false
}

// AllStages lists every stage a job can sit in, terminal states included.
func AllStages() []string {
	all := make([]string, 0, len(forwardOrder)+3)
	all = append(all, forwardOrder...)
	all = append(all, StageRejected, StageFailed, StageCancelled)
	return all
}

// SchedulableStages are the stages the scheduler loop may pick up on its own.
// awaiting_review is excluded entirely: only an external decision moves it.
// approved is schedulable but the job query additionally skips approvals that
// did not request publishing (the publish_requested flag).
func SchedulableStages() []string {
	return []string{
		StageCreated,
		StageTopicReady,
		StageScriptReady,
		StageAudioReady,
		StageSubtitlesReady,
		StageVideoReady,
		StageApproved,
		StagePublishing,
	}
}
