package v1alpha1

func StringToJobStage(s string) JobStage {
	switch JobStage(s) {
	case JobStageCreated, JobStageTopicReady, JobStageScriptReady,
		JobStageAudioReady, JobStageSubtitlesReady, JobStageVideoReady,
		JobStageAwaitingReview, JobStageApproved, JobStagePublishing,
		JobStagePublished, JobStageRejected, JobStageFailed, JobStageCancelled:
		return JobStage(s)
	default:
		return JobStageCreated
	}
}

func StringToGenerationMode(s string) GenerationMode {
	switch GenerationMode(s) {
	case GenerationModeAutoPublish:
		return GenerationModeAutoPublish
	default:
		return GenerationModeReviewFirst
	}
}

func StringToPublishMode(s string) PublishMode {
	switch PublishMode(s) {
	case PublishModeBrowser:
		return PublishModeBrowser
	case PublishModeHybrid:
		return PublishModeHybrid
	default:
		return PublishModeAPI
	}
}
