package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/middleware"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/orchestrator"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
)

type referenceAssetJSON struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

type creativeJSON struct {
	ProductName string `json:"product_name"`
	ProductType string `json:"product_type"`
	Scene       string `json:"scene"`
	Style       string `json:"style"`
	Background  string `json:"background"`
	Notes       string `json:"notes"`
}

type generateRequest struct {
	ModelID          string               `json:"model_id"`
	MediaType        string               `json:"media_type"`
	Prompt           string               `json:"prompt"`
	AspectRatio      string               `json:"aspect_ratio"`
	Quality          string               `json:"quality"`
	ReferenceAssets  []referenceAssetJSON `json:"reference_assets"`
	DurationSeconds  int                  `json:"duration_seconds"`
	Resolution       string               `json:"resolution"`
	VoiceID          string               `json:"voice_id"`
	LanguageCode     string               `json:"language_code"`
	EnableAudioTrack bool                 `json:"enable_audio_track"`
	FireAndForget    bool                 `json:"fire_and_forget"`
	Creative         creativeJSON         `json:"creative"`
}

type generateResponse struct {
	Status         string            `json:"status"`
	Provider       string            `json:"provider,omitempty"`
	TaskID         string            `json:"task_id,omitempty"`
	ArtifactURL    string            `json:"artifact_url,omitempty"`
	ArtifactBase64 string            `json:"artifact_base64,omitempty"`
	MIMEType       string            `json:"mime_type,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	ErrorKind      string            `json:"error_kind,omitempty"`
	Message        string            `json:"message,omitempty"`
}

// Generate accepts a generation request, blocks until a terminal outcome (or
// returns the task handle immediately for fire-and-forget submissions).
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, string(providers.ErrorKindInvalidRequest), "invalid payload")
		return
	}

	refs := make([]providers.ReferenceAsset, 0, len(req.ReferenceAssets))
	for _, ref := range req.ReferenceAssets {
		data, err := base64.StdEncoding.DecodeString(ref.Data)
		if err != nil {
			a.error(w, http.StatusBadRequest, string(providers.ErrorKindInvalidRequest), "reference asset data is not valid base64")
			return
		}
		refs = append(refs, providers.ReferenceAsset{Data: data, MIME: ref.MIMEType})
	}

	languageCode := strings.TrimSpace(req.LanguageCode)
	if languageCode == "" {
		languageCode = middleware.LanguageFromContext(r.Context())
	}

	in := orchestrator.Input{
		CallerID:      middleware.CallerIDFromContext(r.Context()),
		FireAndForget: req.FireAndForget,
		Request: providers.Request{
			ModelID:         req.ModelID,
			MediaType:       providers.MediaType(strings.TrimSpace(req.MediaType)),
			Prompt:          req.Prompt,
			AspectRatio:     req.AspectRatio,
			Quality:         req.Quality,
			ReferenceAssets: refs,
			DurationSeconds: req.DurationSeconds,
			Resolution:      req.Resolution,
			VoiceID:         req.VoiceID,
			LanguageCode:    languageCode,
			EnableAudioTrack: req.EnableAudioTrack,
			Creative: providers.Creative{
				ProductName: req.Creative.ProductName,
				ProductType: req.Creative.ProductType,
				Scene:       req.Creative.Scene,
				Style:       req.Creative.Style,
				Background:  req.Creative.Background,
				Notes:       req.Creative.Notes,
			},
			RequestID: middleware.RequestIDFromContext(r.Context()),
		},
	}

	result := a.Generator.Generate(r.Context(), in)
	a.json(w, statusCode(result), envelope(result))
}

// Status performs a single non-looping poll for a persisted task id, so
// callers can re-check a deferred generation without holding a connection.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	kind := providers.NormalizeKind(chi.URLParam(r, "provider"))
	taskID := strings.TrimSpace(chi.URLParam(r, "task_id"))
	if taskID == "" {
		a.error(w, http.StatusBadRequest, string(providers.ErrorKindInvalidRequest), "task_id required")
		return
	}
	callerID := middleware.CallerIDFromContext(r.Context())

	result := a.Generator.CheckStatus(r.Context(), callerID, kind, taskID)
	resp := envelope(result)
	// The status-check contract speaks processing/completed/failed.
	switch result.Status {
	case orchestrator.StatusSuccess:
		resp.Status = "completed"
	case orchestrator.StatusPending:
		resp.Status = "processing"
	default:
		resp.Status = "failed"
	}
	a.json(w, statusCode(result), resp)
}

func envelope(result orchestrator.Result) generateResponse {
	resp := generateResponse{
		Status:    string(result.Status),
		Provider:  string(result.Provider),
		TaskID:    result.TaskID,
		ErrorKind: string(result.ErrorKind),
		Message:   result.Message,
	}
	if result.Artifact != nil {
		resp.ArtifactURL = result.Artifact.URL
		resp.MIMEType = result.Artifact.MIME
		resp.Metadata = result.Artifact.Metadata
		if len(result.Artifact.Data) > 0 {
			resp.ArtifactBase64 = base64.StdEncoding.EncodeToString(result.Artifact.Data)
		}
	}
	return resp
}

func statusCode(result orchestrator.Result) int {
	switch result.Status {
	case orchestrator.StatusSuccess:
		return http.StatusOK
	case orchestrator.StatusPending:
		return http.StatusAccepted
	}
	switch result.ErrorKind {
	case providers.ErrorKindInvalidRequest:
		return http.StatusBadRequest
	case providers.ErrorKindMissingCredential:
		return http.StatusUnprocessableEntity
	case providers.ErrorKindTimedOut:
		return http.StatusGatewayTimeout
	case providers.ErrorKindCancelled:
		return 499
	default:
		return http.StatusBadGateway
	}
}
