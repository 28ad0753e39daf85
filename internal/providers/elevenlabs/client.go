// Package elevenlabs implements the synchronous ElevenLabs voice backend.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
)

// ErrMissingAPIKey indicates a call was attempted without credentials.
var ErrMissingAPIKey = errors.New("elevenlabs: api key is required")

// Options configures the ElevenLabs client.
type Options struct {
	BaseURL        string
	OutputFormat   string
	HTTPClient     *http.Client
	Logger         *zerolog.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the ElevenLabs text-to-speech API.
type Client struct {
	baseURL      string
	outputFormat string
	httpClient   *http.Client
	logger       zerolog.Logger
}

type speechRequest struct {
	Text         string         `json:"text"`
	ModelID      string         `json:"model_id"`
	LanguageCode string         `json:"language_code,omitempty"`
	VoiceSetting *voiceSettings `json:"voice_settings,omitempty"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type errorResponse struct {
	Detail struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"detail"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io/v1"
	}
	outputFormat := strings.TrimSpace(opts.OutputFormat)
	if outputFormat == "" {
		outputFormat = "mp3_44100_128"
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		baseURL:      baseURL,
		outputFormat: outputFormat,
		httpClient:   httpClient,
		logger:       logger,
	}
}

// Kind identifies this backend.
func (c *Client) Kind() providers.Kind { return providers.KindElevenLabs }

// Statuses is nominal for this backend; text-to-speech answers synchronously.
func (c *Client) Statuses() providers.StatusVocabulary {
	return providers.StatusVocabulary{Ready: []string{"succeeded"}, Failed: []string{"failed"}}
}

// Submit synthesizes speech in one round trip and returns the audio bytes.
func (c *Client) Submit(ctx context.Context, req providers.Request, cred providers.Credential) (providers.Outcome, error) {
	if cred.IsZero() {
		return providers.Outcome{}, ErrMissingAPIKey
	}
	text := providers.EffectivePrompt(req)
	if text == "" {
		return providers.Outcome{}, errors.New("elevenlabs: text is required")
	}
	voiceID := strings.TrimSpace(req.VoiceID)
	if voiceID == "" {
		return providers.Outcome{}, errors.New("elevenlabs: voice id is required")
	}

	payload := speechRequest{
		Text:         text,
		ModelID:      req.ModelID,
		LanguageCode: strings.TrimSpace(req.LanguageCode),
		VoiceSetting: &voiceSettings{Stability: 0.5, SimilarityBoost: 0.75},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return providers.Outcome{}, fmt.Errorf("elevenlabs: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s", c.baseURL, voiceID, c.outputFormat)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return providers.Outcome{}, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", cred.Secret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return providers.Outcome{}, fmt.Errorf("elevenlabs: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return providers.Outcome{}, fmt.Errorf("elevenlabs: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Detail.Message != "" {
			return providers.Outcome{}, providers.NewProviderError(c.Kind(), detail.Detail.Message)
		}
		return providers.Outcome{}, providers.NewHTTPError(c.Kind(), resp.StatusCode)
	}
	if len(raw) == 0 {
		return providers.Outcome{}, providers.NewProviderError(c.Kind(), "empty audio response")
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "audio/mpeg"
	}
	c.logger.Debug().
		Str("voice_id", voiceID).
		Int("bytes", len(raw)).
		Msg("elevenlabs: synthesized speech")
	return providers.Outcome{
		RawStatus: "succeeded",
		Artifact: &providers.Artifact{
			Data: raw,
			MIME: mime,
			Metadata: map[string]string{
				"voice_id":      voiceID,
				"output_format": c.outputFormat,
			},
		},
	}, nil
}

// Poll is never called for this backend; speech synthesis is synchronous.
func (c *Client) Poll(ctx context.Context, taskID string, cred providers.Credential) (providers.Outcome, error) {
	return providers.Outcome{}, errors.New("elevenlabs: poll is not supported for synchronous models")
}

var _ providers.Adapter = (*Client)(nil)
