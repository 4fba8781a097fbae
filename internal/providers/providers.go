// Package providers defines the narrow interfaces behind which every external
// collaborator of the pipeline sits: topic sources, script generation, speech
// synthesis, transcription, video rendering and platform publishing. The
// orchestrator depends only on these interfaces, never on a concrete
// implementation.
package providers

import (
	"context"
	"time"
)

type Kind string

const (
	KindTopic         Kind = "topic"
	KindScript        Kind = "script"
	KindNarration     Kind = "narration"
	KindTranscription Kind = "transcription"
	KindVideo         Kind = "video"
	KindPublish       Kind = "publish"
)

type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityOptional Severity = "optional"
	SeverityWarning  Severity = "warning"
	SeverityBlocking Severity = "blocking"
)

// Diagnostic is one collaborator's self-reported availability.
type Diagnostic struct {
	Name      string
	Kind      Kind
	Available bool
	Severity  Severity
	Detail    string
}

// Provider is the base contract every collaborator implements.
type Provider interface {
	Name() string
	Diagnose(ctx context.Context) Diagnostic
}

// ProgressFunc lets a collaborator report progress within a stage.
// Implementations may call it with a value in [0,100]; reported values are
// applied monotonically.
type ProgressFunc func(percent int)

type Topic struct {
	Title  string
	Origin map[string]string
}

type TopicRequest struct {
	NicheName   string
	NichePrompt string
	SourceHint  string
}

type TopicSource interface {
	Provider
	Pick(ctx context.Context, req TopicRequest) (*Topic, error)
}

type Script struct {
	Hook              string
	Body              string
	CTA               string
	EstimatedDuration time.Duration
}

// Text renders the full narration text of the script.
func (s *Script) Text() string {
	out := s.Hook
	if s.Body != "" {
		out += "\n" + s.Body
	}
	if s.CTA != "" {
		out += "\n" + s.CTA
	}
	return out
}

type ScriptRequest struct {
	Topic             string
	NichePrompt       string
	CharacterHint     string
	Model             string
	Temperature       float64
	TargetDurationSec int
}

type ScriptGenerator interface {
	Provider
	Generate(ctx context.Context, req ScriptRequest) (*Script, error)
}

type SpeechRequest struct {
	Text    string
	VoiceID string
	// OutputPath is where the synthesized audio artifact must land.
	OutputPath string
}

type NarrationSynthesizer interface {
	Provider
	Synthesize(ctx context.Context, req SpeechRequest, progress ProgressFunc) (audioPath string, err error)
}

type TranscriptionRequest struct {
	AudioPath  string
	Model      string
	Device     string
	OutputPath string
}

type Transcriber interface {
	Provider
	Transcribe(ctx context.Context, req TranscriptionRequest) (subtitlePath string, err error)
}

type RenderRequest struct {
	Script        string
	AudioPath     string
	SubtitlePath  string
	Scenes        []string
	Model         string
	AspectRatio   string
	StartImageURL string
	EndImageURL   string
	OutputPath    string
}

type VideoRenderer interface {
	Provider
	Render(ctx context.Context, req RenderRequest, progress ProgressFunc) (videoPath string, err error)
}

type PublishRequest struct {
	VideoPath   string
	Caption     string
	Platform    string
	AccountName string
	PublishMode string
}

// PublishOutcome mirrors the per-platform result statuses of the store.
type PublishOutcome struct {
	Status    string
	RemoteURL string
}

type Publisher interface {
	Provider
	Publish(ctx context.Context, req PublishRequest) (*PublishOutcome, error)
}
