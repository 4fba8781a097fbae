// Package stub contains the development implementations of the collaborator
// interfaces. They produce placeholder artifacts instantly so the pipeline
// can be exercised end to end without any external service.
package stub

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/reelforge/reelforge/internal/providers"
)

const Name = "stub"

func diagnostic(kind providers.Kind) providers.Diagnostic {
	return providers.Diagnostic{
		Name:      Name,
		Kind:      kind,
		Available: true,
		Severity:  providers.SeverityOK,
	}
}

type TopicSource struct{}

func (TopicSource) Name() string { return Name }

func (TopicSource) Diagnose(_ context.Context) providers.Diagnostic {
	return diagnostic(providers.KindTopic)
}

func (TopicSource) Pick(_ context.Context, req providers.TopicRequest) (*providers.Topic, error) {
	title := fmt.Sprintf("Five things to know about %s", req.NicheName)
	return &providers.Topic{
		Title:  title,
		Origin: map[string]string{"source": Name, "hint": req.SourceHint},
	}, nil
}

type ScriptGenerator struct{}

func (ScriptGenerator) Name() string { return Name }

func (ScriptGenerator) Diagnose(_ context.Context) providers.Diagnostic {
	return diagnostic(providers.KindScript)
}

func (ScriptGenerator) Generate(_ context.Context, req providers.ScriptRequest) (*providers.Script, error) {
	words := len(strings.Fields(req.Topic)) * 20
	return &providers.Script{
		Hook:              fmt.Sprintf("You won't believe this about %s.", req.Topic),
		Body:              fmt.Sprintf("Here is everything you need to know about %s.", req.Topic),
		CTA:               "Follow for more.",
		EstimatedDuration: time.Duration(words/3) * time.Second,
	}, nil
}

type NarrationSynthesizer struct{}

func (NarrationSynthesizer) Name() string { return Name }

func (NarrationSynthesizer) Diagnose(_ context.Context) providers.Diagnostic {
	return diagnostic(providers.KindNarration)
}

func (NarrationSynthesizer) Synthesize(_ context.Context, req providers.SpeechRequest, progress providers.ProgressFunc) (string, error) {
	if progress != nil {
		progress(50)
	}
	if err := writePlaceholder(req.OutputPath, "audio voice="+req.VoiceID); err != nil {
		return "", err
	}
	if progress != nil {
		progress(100)
	}
	return req.OutputPath, nil
}

type Transcriber struct{}

func (Transcriber) Name() string { return Name }

func (Transcriber) Diagnose(_ context.Context) providers.Diagnostic {
	return diagnostic(providers.KindTranscription)
}

func (Transcriber) Transcribe(_ context.Context, req providers.TranscriptionRequest) (string, error) {
	srt := "1\n00:00:00,000 --> 00:00:03,000\nplaceholder subtitles\n"
	if err := writePlaceholder(req.OutputPath, srt); err != nil {
		return "", err
	}
	return req.OutputPath, nil
}

type VideoRenderer struct{}

func (VideoRenderer) Name() string { return Name }

func (VideoRenderer) Diagnose(_ context.Context) providers.Diagnostic {
	return diagnostic(providers.KindVideo)
}

func (VideoRenderer) Render(_ context.Context, req providers.RenderRequest, progress providers.ProgressFunc) (string, error) {
	if progress != nil {
		progress(50)
	}
	if err := writePlaceholder(req.OutputPath, "video aspect="+req.AspectRatio); err != nil {
		return "", err
	}
	if progress != nil {
		progress(100)
	}
	return req.OutputPath, nil
}

type Publisher struct {
	Platform string
}

func (p Publisher) Name() string { return Name + "-" + p.Platform }

func (p Publisher) Diagnose(_ context.Context) providers.Diagnostic {
	d := diagnostic(providers.KindPublish)
	d.Name = p.Name()
	return d
}

func (p Publisher) Publish(_ context.Context, req providers.PublishRequest) (*providers.PublishOutcome, error) {
	return &providers.PublishOutcome{
		Status:    "published",
		RemoteURL: fmt.Sprintf("https://%s.example.com/v/%s", req.Platform, filepath.Base(req.VideoPath)),
	}, nil
}

func writePlaceholder(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
