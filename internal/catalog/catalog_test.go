package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
)

func TestResolveKnownModel(t *testing.T) {
	reg := Default()
	desc, ok := reg.Resolve("kling-v2-master")
	if !ok {
		t.Fatalf("expected kling-v2-master to resolve")
	}
	if desc.Provider != providers.KindKling {
		t.Fatalf("provider = %q, want %q", desc.Provider, providers.KindKling)
	}
	if desc.MediaType != providers.MediaVideo {
		t.Fatalf("media type = %q, want video", desc.MediaType)
	}
	if !desc.Asynchronous {
		t.Fatalf("expected kling-v2-master to be asynchronous")
	}
	if desc.DefaultDurationSeconds != 5 {
		t.Fatalf("default duration = %d, want 5", desc.DefaultDurationSeconds)
	}
}

func TestResolveUnknownModel(t *testing.T) {
	reg := Default()
	if _, ok := reg.Resolve("nope-v1"); ok {
		t.Fatalf("unknown model must not resolve")
	}
	if _, ok := reg.Resolve(""); ok {
		t.Fatalf("empty model id must not resolve")
	}
}

func TestResolveTrimsWhitespace(t *testing.T) {
	reg := NewRegistry(ModelDescriptor{ModelID: "m1", Provider: providers.KindDashScope, MediaType: providers.MediaImage})
	if _, ok := reg.Resolve("  m1 "); !ok {
		t.Fatalf("expected whitespace-padded id to resolve")
	}
}

func TestRequiredCredential(t *testing.T) {
	reg := Default()
	kind, err := reg.RequiredCredential("eleven-multilingual-v2")
	if err != nil {
		t.Fatalf("required credential: %v", err)
	}
	if kind != providers.KindElevenLabs {
		t.Fatalf("kind = %q, want %q", kind, providers.KindElevenLabs)
	}
	if _, err := reg.RequiredCredential("missing"); err == nil {
		t.Fatalf("expected error for unknown model")
	}
}

func TestNewRegistryLaterEntriesOverride(t *testing.T) {
	reg := NewRegistry(
		ModelDescriptor{ModelID: "m1", Provider: providers.KindDashScope, MediaType: providers.MediaImage},
		ModelDescriptor{ModelID: "m1", Provider: providers.KindLeonardo, MediaType: providers.MediaImage},
	)
	desc, ok := reg.Resolve("m1")
	if !ok {
		t.Fatalf("expected m1 to resolve")
	}
	if desc.Provider != providers.KindLeonardo {
		t.Fatalf("provider = %q, want override %q", desc.Provider, providers.KindLeonardo)
	}
}

func TestLoadMergesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	payload := `models:
  - model_id: custom-video
    provider: kling
    media_type: video
    asynchronous: true
    max_duration_seconds: 10
    default_duration_seconds: 5
  - model_id: qwen-image-plus
    provider: dashscope
    media_type: image
    max_characters: 400
`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := reg.Resolve("custom-video"); !ok {
		t.Fatalf("expected custom-video from override file")
	}
	desc, ok := reg.Resolve("qwen-image-plus")
	if !ok {
		t.Fatalf("expected qwen-image-plus to resolve")
	}
	if desc.MaxCharacters != 400 {
		t.Fatalf("max characters = %d, want override 400", desc.MaxCharacters)
	}
	if _, ok := reg.Resolve("leonardo-phoenix"); !ok {
		t.Fatalf("defaults must survive an override file")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := reg.Resolve("qwen-image-plus"); !ok {
		t.Fatalf("expected default catalog")
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	payload := "models:\n  - model_id: x\n    provider: mystery\n    media_type: image\n"
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
