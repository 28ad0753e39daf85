package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
)

type fileModel struct {
	ModelID                 string `yaml:"model_id"`
	Provider                string `yaml:"provider"`
	MediaType               string `yaml:"media_type"`
	SupportsReferenceAssets bool   `yaml:"supports_reference_assets"`
	Asynchronous            bool   `yaml:"asynchronous"`
	SupportsAudioTrack      bool   `yaml:"supports_audio_track"`
	SupportsStartFrame      bool   `yaml:"supports_start_frame"`
	MaxCharacters           int    `yaml:"max_characters"`
	MaxDurationSeconds      int    `yaml:"max_duration_seconds"`
	DefaultDurationSeconds  int    `yaml:"default_duration_seconds"`
	DefaultResolution       string `yaml:"default_resolution"`
	DefaultVoiceID          string `yaml:"default_voice_id"`
}

type fileCatalog struct {
	Models []fileModel `yaml:"models"`
}

// Load builds a registry from the built-in defaults merged with operator
// overrides from a YAML file. An empty path returns the defaults unchanged.
func Load(path string) (*Registry, error) {
	base := Default()
	if strings.TrimSpace(path) == "" {
		return base, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var parsed fileCatalog
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	merged := base.Models()
	for _, m := range parsed.Models {
		desc, err := m.descriptor()
		if err != nil {
			return nil, fmt.Errorf("catalog: %s: %w", path, err)
		}
		merged = append(merged, desc)
	}
	return NewRegistry(merged...), nil
}

func (m fileModel) descriptor() (ModelDescriptor, error) {
	if strings.TrimSpace(m.ModelID) == "" {
		return ModelDescriptor{}, fmt.Errorf("model entry missing model_id")
	}
	kind := providers.NormalizeKind(m.Provider)
	switch kind {
	case providers.KindDashScope, providers.KindLeonardo, providers.KindKling, providers.KindElevenLabs:
	default:
		return ModelDescriptor{}, fmt.Errorf("model %q: unknown provider %q", m.ModelID, m.Provider)
	}
	media := providers.MediaType(strings.ToLower(strings.TrimSpace(m.MediaType)))
	switch media {
	case providers.MediaImage, providers.MediaVideo, providers.MediaAudio:
	default:
		return ModelDescriptor{}, fmt.Errorf("model %q: unknown media type %q", m.ModelID, m.MediaType)
	}
	return ModelDescriptor{
		ModelID:                 strings.TrimSpace(m.ModelID),
		Provider:                kind,
		MediaType:               media,
		SupportsReferenceAssets: m.SupportsReferenceAssets,
		Asynchronous:            m.Asynchronous,
		SupportsAudioTrack:      m.SupportsAudioTrack,
		SupportsStartFrame:      m.SupportsStartFrame,
		MaxCharacters:           m.MaxCharacters,
		MaxDurationSeconds:      m.MaxDurationSeconds,
		DefaultDurationSeconds:  m.DefaultDurationSeconds,
		DefaultResolution:       m.DefaultResolution,
		DefaultVoiceID:          m.DefaultVoiceID,
	}, nil
}
