package elevenlabs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
)

func TestSubmitReturnsAudioBytes(t *testing.T) {
	var captured speechRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-to-speech/voice-1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("output_format"); got != "mp3_44100_128" {
			t.Errorf("output_format = %q", got)
		}
		if got := r.Header.Get("xi-api-key"); got != "xi-test" {
			t.Errorf("xi-api-key = %q", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3mp3bytes"))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	out, err := client.Submit(context.Background(), providers.Request{
		ModelID:      "eleven-multilingual-v2",
		Prompt:       "Bienvenidos a nuestra tienda",
		VoiceID:      "voice-1",
		LanguageCode: "es",
	}, providers.Credential{Secret: "xi-test"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !out.Ready() {
		t.Fatalf("expected synchronous artifact")
	}
	if string(out.Artifact.Data) != "ID3mp3bytes" {
		t.Fatalf("artifact bytes = %q", out.Artifact.Data)
	}
	if out.Artifact.MIME != "audio/mpeg" {
		t.Fatalf("mime = %q", out.Artifact.MIME)
	}
	if out.Artifact.Metadata["voice_id"] != "voice-1" {
		t.Fatalf("voice_id metadata = %q", out.Artifact.Metadata["voice_id"])
	}
	if captured.Text != "Bienvenidos a nuestra tienda" {
		t.Fatalf("text = %q", captured.Text)
	}
	if captured.LanguageCode != "es" {
		t.Fatalf("language_code = %q", captured.LanguageCode)
	}
	if captured.VoiceSetting == nil || captured.VoiceSetting.Stability != 0.5 {
		t.Fatalf("voice settings = %+v", captured.VoiceSetting)
	}
}

func TestSubmitTranslatesDetailError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"detail": map[string]string{"status": "invalid_api_key", "message": "invalid api key"},
		})
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	_, err := client.Submit(context.Background(), providers.Request{ModelID: "m", Prompt: "p", VoiceID: "v"}, providers.Credential{Secret: "bad"})
	var pe *providers.Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *providers.Error, got %v", err)
	}
	if pe.Message != "invalid api key" {
		t.Fatalf("message = %q", pe.Message)
	}
}

func TestSubmitGenericHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	_, err := client.Submit(context.Background(), providers.Request{ModelID: "m", Prompt: "p", VoiceID: "v"}, providers.Credential{Secret: "k"})
	var pe *providers.Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *providers.Error, got %v", err)
	}
	if pe.Message != "HTTP 429" {
		t.Fatalf("message = %q, want HTTP 429", pe.Message)
	}
}

func TestSubmitEmptyAudioIsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	_, err := client.Submit(context.Background(), providers.Request{ModelID: "m", Prompt: "p", VoiceID: "v"}, providers.Credential{Secret: "k"})
	if providers.KindOf(err) != providers.ErrorKindProvider {
		t.Fatalf("err = %v, want provider error", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	client := NewClient(Options{BaseURL: "http://unused"})
	if _, err := client.Submit(context.Background(), providers.Request{ModelID: "m", Prompt: "p", VoiceID: "v"}, providers.Credential{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
	if _, err := client.Submit(context.Background(), providers.Request{ModelID: "m", Prompt: "p"}, providers.Credential{Secret: "k"}); err == nil {
		t.Fatalf("expected error without voice id")
	}
}
