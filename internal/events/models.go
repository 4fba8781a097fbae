package events

// StageTransitionEvent is emitted every time a job advances (or falls into a
// terminal state).
type StageTransitionEvent struct {
	JobID     string `json:"job_id"`
	NicheID   string `json:"niche_id"`
	FromStage string `json:"from_stage"`
	ToStage   string `json:"to_stage"`
}

// StageFailureEvent is emitted on every classified stage failure.
type StageFailureEvent struct {
	JobID   string `json:"job_id"`
	Stage   string `json:"stage"`
	Class   string `json:"class"`
	Attempt int    `json:"attempt"`
	Message string `json:"message"`
}

// ReviewDecisionEvent is emitted when the review gate releases a job.
type ReviewDecisionEvent struct {
	JobID     string   `json:"job_id"`
	Approved  bool     `json:"approved"`
	Publish   bool     `json:"publish"`
	Platforms []string `json:"platforms,omitempty"`
	Synthetic bool     `json:"synthetic"`
}

// PublishOutcomeEvent is emitted once per (platform, attempt).
type PublishOutcomeEvent struct {
	JobID     string `json:"job_id"`
	Platform  string `json:"platform"`
	Attempt   int    `json:"attempt"`
	Status    string `json:"status"`
	RemoteURL string `json:"remote_url,omitempty"`
}
