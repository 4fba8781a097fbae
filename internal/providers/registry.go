package providers

import (
	"context"
	"fmt"
	"sync"
)

// Registry holds the configured collaborator implementations. Registration
// binds an implementation to a routing name: the name configuration and
// niches select providers by, which may differ from the implementation's own
// name (a stub can stand in for any configured provider during development).
// Publishers are keyed by platform since each platform has exactly one active
// publisher.
type Registry struct {
	mu           sync.RWMutex
	topics       map[string]TopicSource
	scripts      map[string]ScriptGenerator
	narrators    map[string]NarrationSynthesizer
	transcribers map[string]Transcriber
	renderers    map[string]VideoRenderer
	publishers   map[string]Publisher
}

func NewRegistry() *Registry {
	return &Registry{
		topics:       make(map[string]TopicSource),
		scripts:      make(map[string]ScriptGenerator),
		narrators:    make(map[string]NarrationSynthesizer),
		transcribers: make(map[string]Transcriber),
		renderers:    make(map[string]VideoRenderer),
		publishers:   make(map[string]Publisher),
	}
}

func (r *Registry) RegisterTopicSource(name string, p TopicSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics[name] = p
}

func (r *Registry) RegisterScriptGenerator(name string, p ScriptGenerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts[name] = p
}

func (r *Registry) RegisterNarrationSynthesizer(name string, p NarrationSynthesizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.narrators[name] = p
}

func (r *Registry) RegisterTranscriber(name string, p Transcriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcribers[name] = p
}

func (r *Registry) RegisterVideoRenderer(name string, p VideoRenderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[name] = p
}

func (r *Registry) RegisterPublisher(platform string, p Publisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishers[platform] = p
}

func (r *Registry) TopicSource(name string) (TopicSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.topics[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown topic source %q", name)
}

func (r *Registry) ScriptGenerator(name string) (ScriptGenerator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.scripts[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown script generator %q", name)
}

func (r *Registry) NarrationSynthesizer(name string) (NarrationSynthesizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.narrators[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown narration synthesizer %q", name)
}

func (r *Registry) Transcriber(name string) (Transcriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.transcribers[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown transcriber %q", name)
}

func (r *Registry) VideoRenderer(name string) (VideoRenderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.renderers[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown video renderer %q", name)
}

func (r *Registry) Publisher(platform string) (Publisher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.publishers[platform]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no publisher configured for platform %q", platform)
}

// Platforms lists every platform with a registered publisher.
func (r *Registry) Platforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	platforms := make([]string, 0, len(r.publishers))
	for platform := range r.publishers {
		platforms = append(platforms, platform)
	}
	return platforms
}

// Diagnostics collects the self-reported availability of every registered
// provider. The reported name is the routing name, with the implementation's
// own name in the detail when the two differ.
func (r *Registry) Diagnostics(ctx context.Context) []Diagnostic {
	type entry struct {
		name string
		p    Provider
	}

	r.mu.RLock()
	all := make([]entry, 0)
	for name, p := range r.topics {
		all = append(all, entry{name, p})
	}
	for name, p := range r.scripts {
		all = append(all, entry{name, p})
	}
	for name, p := range r.narrators {
		all = append(all, entry{name, p})
	}
	for name, p := range r.transcribers {
		all = append(all, entry{name, p})
	}
	for name, p := range r.renderers {
		all = append(all, entry{name, p})
	}
	for name, p := range r.publishers {
		all = append(all, entry{name, p})
	}
	r.mu.RUnlock()

	diags := make([]Diagnostic, 0, len(all))
	for _, e := range all {
		d := e.p.Diagnose(ctx)
		if d.Name != e.name {
			if d.Detail == "" {
				d.Detail = "implemented by " + d.Name
			}
			d.Name = e.name
		}
		diags = append(diags, d)
	}
	return diags
}
