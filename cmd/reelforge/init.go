package main

import (
	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/handlers/validator"
	"github.com/reelforge/reelforge/internal/providers"
	"github.com/reelforge/reelforge/internal/providers/stub"
)

// newRegistry wires the collaborator implementations. This build ships the
// development stubs; they are registered under every routing name the
// configuration defaults point at, so a fresh install runs the pipeline end
// to end without external services.
func newRegistry(cfg *config.Config) *providers.Registry {
	registry := providers.NewRegistry()

	for _, name := range routingNames(cfg.Defaults.TopicProvider) {
		registry.RegisterTopicSource(name, stub.TopicSource{})
	}
	for _, name := range routingNames(cfg.Defaults.ScriptProvider) {
		registry.RegisterScriptGenerator(name, stub.ScriptGenerator{})
	}
	for _, name := range routingNames(cfg.Defaults.TTSProvider) {
		registry.RegisterNarrationSynthesizer(name, stub.NarrationSynthesizer{})
	}
	for _, name := range routingNames(cfg.Defaults.STTProvider) {
		registry.RegisterTranscriber(name, stub.Transcriber{})
	}
	for _, name := range routingNames(cfg.Defaults.VideoProvider) {
		registry.RegisterVideoRenderer(name, stub.VideoRenderer{})
	}

	for _, platform := range validator.SupportedPlatforms() {
		registry.RegisterPublisher(platform, stub.Publisher{Platform: platform})
	}

	return registry
}

func routingNames(configured string) []string {
	if configured == "" || configured == stub.Name {
		return []string{stub.Name}
	}
	return []string{stub.Name, configured}
}
