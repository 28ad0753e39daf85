// Package catalog holds the static model catalog: the mapping from a model
// identifier to its provider, capability flags, and default parameters. It is
// populated once at startup and never mutated, so concurrent reads need no
// synchronization.
package catalog

import (
	"fmt"
	"strings"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
)

// ModelDescriptor describes one generation model and its limits.
type ModelDescriptor struct {
	ModelID                 string
	Provider                providers.Kind
	MediaType               providers.MediaType
	SupportsReferenceAssets bool
	Asynchronous            bool
	SupportsAudioTrack      bool
	SupportsStartFrame      bool
	MaxCharacters           int
	MaxDurationSeconds      int
	DefaultDurationSeconds  int
	DefaultResolution       string
	DefaultVoiceID          string
}

// Registry resolves model identifiers in O(1).
type Registry struct {
	byID map[string]ModelDescriptor
}

// NewRegistry builds a registry from descriptors. Later entries override
// earlier ones with the same model id.
func NewRegistry(models ...ModelDescriptor) *Registry {
	byID := make(map[string]ModelDescriptor, len(models))
	for _, m := range models {
		id := strings.TrimSpace(m.ModelID)
		if id == "" {
			continue
		}
		m.ModelID = id
		byID[id] = m
	}
	return &Registry{byID: byID}
}

// Resolve looks up a model descriptor. The boolean is false for unknown ids;
// callers must treat that as a validation failure raised before any credential
// lookup or network call.
func (r *Registry) Resolve(modelID string) (ModelDescriptor, bool) {
	if r == nil {
		return ModelDescriptor{}, false
	}
	desc, ok := r.byID[strings.TrimSpace(modelID)]
	return desc, ok
}

// RequiredCredential reports which provider key a model needs, so callers can
// fail fast with an actionable "configure your X key" message instead of a
// generic provider error.
func (r *Registry) RequiredCredential(modelID string) (providers.Kind, error) {
	desc, ok := r.Resolve(modelID)
	if !ok {
		return "", fmt.Errorf("catalog: unknown model %q", modelID)
	}
	return desc.Provider, nil
}

// Models returns a copy of every registered descriptor.
func (r *Registry) Models() []ModelDescriptor {
	if r == nil {
		return nil
	}
	out := make([]ModelDescriptor, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	return out
}

// Default returns the built-in catalog covering every wired provider.
func Default() *Registry {
	return NewRegistry(
		ModelDescriptor{
			ModelID:                 "qwen-image-plus",
			Provider:                providers.KindDashScope,
			MediaType:               providers.MediaImage,
			SupportsReferenceAssets: true,
			MaxCharacters:           800,
			DefaultResolution:       "1328*1328",
		},
		ModelDescriptor{
			ModelID:           "qwen-image-turbo",
			Provider:          providers.KindDashScope,
			MediaType:         providers.MediaImage,
			MaxCharacters:     800,
			DefaultResolution: "1024*1024",
		},
		ModelDescriptor{
			ModelID:           "leonardo-phoenix",
			Provider:          providers.KindLeonardo,
			MediaType:         providers.MediaImage,
			Asynchronous:      true,
			MaxCharacters:     1500,
			DefaultResolution: "1024x1024",
		},
		ModelDescriptor{
			ModelID:                "kling-v1-6",
			Provider:               providers.KindKling,
			MediaType:              providers.MediaVideo,
			Asynchronous:           true,
			SupportsStartFrame:     true,
			MaxCharacters:          2500,
			MaxDurationSeconds:     10,
			DefaultDurationSeconds: 5,
			DefaultResolution:      "720p",
		},
		ModelDescriptor{
			ModelID:                "kling-v2-master",
			Provider:               providers.KindKling,
			MediaType:              providers.MediaVideo,
			Asynchronous:           true,
			SupportsStartFrame:     true,
			SupportsAudioTrack:     true,
			MaxCharacters:          2500,
			MaxDurationSeconds:     10,
			DefaultDurationSeconds: 5,
			DefaultResolution:      "1080p",
		},
		ModelDescriptor{
			ModelID:        "eleven-multilingual-v2",
			Provider:       providers.KindElevenLabs,
			MediaType:      providers.MediaAudio,
			MaxCharacters:  5000,
			DefaultVoiceID: "21m00Tcm4TlvDq8ikWAM",
		},
	)
}
