package kling

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
)

const testCredential = "access-123,secret-456"

func TestSubmitMintsTokenAndReturnsTask(t *testing.T) {
	var captured createRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/open/v1/video/generation" {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		token, err := jwt.Parse(raw, func(tok *jwt.Token) (any, error) {
			if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte("secret-456"), nil
		})
		if err != nil || !token.Valid {
			t.Errorf("invalid bearer token: %v", err)
		} else if claims, ok := token.Claims.(jwt.MapClaims); !ok || claims["iss"] != "access-123" {
			t.Errorf("token iss = %v, want access-123", token.Claims)
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0, "message": "ok",
			"data": map[string]string{"task_id": "task-9"},
		})
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	out, err := client.Submit(context.Background(), providers.Request{
		ModelID:          "kling-v2-master",
		Prompt:           "slow pan over ceramic mugs",
		AspectRatio:      "9:16",
		Resolution:       "1080p",
		DurationSeconds:  10,
		EnableAudioTrack: true,
	}, providers.Credential{Secret: testCredential})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.TaskID != "task-9" {
		t.Fatalf("task id = %q, want task-9", out.TaskID)
	}
	if out.Ready() {
		t.Fatalf("submit must not claim a ready artifact")
	}
	if captured.Mode != "txt2video" {
		t.Fatalf("mode = %q, want txt2video", captured.Mode)
	}
	if captured.Duration != "10" {
		t.Fatalf("duration = %q, want 10", captured.Duration)
	}
	if captured.AspectRatio != "9:16" {
		t.Fatalf("aspect ratio = %q", captured.AspectRatio)
	}
	if captured.Resolution != "1080p" {
		t.Fatalf("resolution = %q, want 1080p forwarded", captured.Resolution)
	}
	if !captured.Sound {
		t.Fatalf("expected sound flag")
	}
}

func TestSubmitStartFrameSwitchesMode(t *testing.T) {
	var captured createRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 0, "data": map[string]string{"task_id": "t"}})
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	_, err := client.Submit(context.Background(), providers.Request{
		ModelID:         "kling-v1-6",
		Prompt:          "p",
		ReferenceAssets: []providers.ReferenceAsset{{Data: []byte{1, 2, 3}, MIME: "image/png"}},
	}, providers.Credential{Secret: testCredential})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if captured.Mode != "img2video" {
		t.Fatalf("mode = %q, want img2video", captured.Mode)
	}
	if captured.Image == "" {
		t.Fatalf("expected start frame to be forwarded")
	}
}

func TestSubmitNonZeroCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 1102, "message": "insufficient balance"})
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	_, err := client.Submit(context.Background(), providers.Request{ModelID: "m", Prompt: "p"}, providers.Credential{Secret: testCredential})
	var pe *providers.Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *providers.Error, got %v", err)
	}
	if !strings.Contains(pe.Message, "insufficient balance") {
		t.Fatalf("message = %q", pe.Message)
	}
}

func TestPollStates(t *testing.T) {
	status := "processing"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/open/v1/video/generation/task-9" {
			t.Errorf("path = %q", r.URL.Path)
		}
		data := map[string]any{"id": "task-9", "status": status}
		if status == "succeed" {
			data["task_result"] = map[string]any{
				"videos": []any{map[string]string{"url": "https://cdn.kling.com/v.mp4", "duration": "5"}},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 0, "data": data})
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	out, err := client.Poll(context.Background(), "task-9", providers.Credential{Secret: testCredential})
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if out.Ready() {
		t.Fatalf("processing poll must not be ready")
	}

	status = "succeed"
	out, err = client.Poll(context.Background(), "task-9", providers.Credential{Secret: testCredential})
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if !out.Ready() {
		t.Fatalf("succeeded poll must carry the artifact")
	}
	if out.Artifact.URL != "https://cdn.kling.com/v.mp4" {
		t.Fatalf("artifact url = %q", out.Artifact.URL)
	}
	if out.Artifact.Metadata["duration"] != "5" {
		t.Fatalf("duration metadata = %q", out.Artifact.Metadata["duration"])
	}
}

func TestPollFailedCarriesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0, "message": "prompt violates policy",
			"data": map[string]any{"id": "task-9", "status": "failed"},
		})
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	out, err := client.Poll(context.Background(), "task-9", providers.Credential{Secret: testCredential})
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if out.FailureMessage != "prompt violates policy" {
		t.Fatalf("failure message = %q", out.FailureMessage)
	}
}

func TestMintTokenRejectsBadCredentials(t *testing.T) {
	if _, err := mintToken(providers.Credential{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("empty credential err = %v", err)
	}
	for _, secret := range []string{"no-comma", "a,b,c", ",missing-access", "missing-secret,"} {
		if _, err := mintToken(providers.Credential{Secret: secret}); !errors.Is(err, ErrInvalidKeyFormat) {
			t.Fatalf("mintToken(%q) err = %v, want ErrInvalidKeyFormat", secret, err)
		}
	}
}

func TestDurationAndAspectDefaults(t *testing.T) {
	if got := durationFor(0); got != "5" {
		t.Fatalf("durationFor(0) = %q", got)
	}
	if got := durationFor(12); got != "10" {
		t.Fatalf("durationFor(12) = %q", got)
	}
	if got := aspectRatioFor("21:9"); got != "16:9" {
		t.Fatalf("aspectRatioFor fallback = %q", got)
	}
	if got := aspectRatioFor("1:1"); got != "1:1" {
		t.Fatalf("aspectRatioFor(1:1) = %q", got)
	}
}
