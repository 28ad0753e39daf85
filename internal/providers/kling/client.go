// Package kling implements the asynchronous Kling video backend.
package kling

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/rs/zerolog"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
)

// ErrMissingAPIKey indicates a call was attempted without credentials.
var ErrMissingAPIKey = errors.New("kling: api key is required")

// ErrInvalidKeyFormat indicates the credential is not an access/secret pair.
var ErrInvalidKeyFormat = errors.New("kling: invalid api key format, expected 'access_key,secret_key'")

// Options configures the Kling client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *zerolog.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the Kling video generation API. Every call
// mints a short-lived HS256 token from the caller's access/secret key pair.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type createRequest struct {
	Prompt      string `json:"prompt,omitempty"`
	Image       string `json:"image,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Duration    string `json:"duration,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	Model       string `json:"model,omitempty"`
	Sound       bool   `json:"sound,omitempty"`
}

type createResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TaskID string `json:"task_id"`
	} `json:"data"`
}

type taskResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		TaskResult *struct {
			Videos []struct {
				URL      string `json:"url"`
				Duration string `json:"duration"`
			} `json:"videos"`
		} `json:"task_result,omitempty"`
	} `json:"data"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.kuaishou.com"
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger}
}

// Kind identifies this backend.
func (c *Client) Kind() providers.Kind { return providers.KindKling }

// Statuses declares the vocabulary Kling task responses report.
func (c *Client) Statuses() providers.StatusVocabulary {
	return providers.StatusVocabulary{
		Ready:    []string{"succeed"},
		NotReady: []string{"submitted", "processing"},
		Failed:   []string{"failed"},
	}
}

// Submit creates a video generation task and returns the deferred handle.
func (c *Client) Submit(ctx context.Context, req providers.Request, cred providers.Credential) (providers.Outcome, error) {
	prompt := providers.EffectivePrompt(req)
	if prompt == "" {
		return providers.Outcome{}, errors.New("kling: prompt is required")
	}
	payload := createRequest{
		Prompt:      prompt,
		Mode:        "txt2video",
		Duration:    durationFor(req.DurationSeconds),
		AspectRatio: aspectRatioFor(req.AspectRatio),
		Resolution:  strings.TrimSpace(req.Resolution),
		Model:       req.ModelID,
		Sound:       req.EnableAudioTrack,
	}
	if len(req.ReferenceAssets) > 0 && len(req.ReferenceAssets[0].Data) > 0 {
		// The first reference asset acts as the start frame.
		payload.Image = base64.StdEncoding.EncodeToString(req.ReferenceAssets[0].Data)
		payload.Mode = "img2video"
	}

	var decoded createResponse
	if err := c.do(ctx, http.MethodPost, "/api/open/v1/video/generation", cred, payload, &decoded); err != nil {
		return providers.Outcome{}, err
	}
	if decoded.Code != 0 {
		return providers.Outcome{}, providers.NewProviderError(c.Kind(), fmt.Sprintf("%s (code %d)", decoded.Message, decoded.Code))
	}
	taskID := strings.TrimSpace(decoded.Data.TaskID)
	if taskID == "" {
		return providers.Outcome{}, providers.NewProviderError(c.Kind(), "missing task id")
	}
	c.logger.Debug().Str("task_id", taskID).Msg("kling: video task submitted")
	return providers.Outcome{TaskID: taskID, RawStatus: "submitted"}, nil
}

// Poll reads the task status; it has no side effect beyond the remote query.
func (c *Client) Poll(ctx context.Context, taskID string, cred providers.Credential) (providers.Outcome, error) {
	var decoded taskResponse
	if err := c.do(ctx, http.MethodGet, "/api/open/v1/video/generation/"+taskID, cred, nil, &decoded); err != nil {
		return providers.Outcome{}, err
	}
	if decoded.Code != 0 {
		return providers.Outcome{}, providers.NewProviderError(c.Kind(), fmt.Sprintf("%s (code %d)", decoded.Message, decoded.Code))
	}
	status := strings.TrimSpace(decoded.Data.Status)
	out := providers.Outcome{TaskID: taskID, RawStatus: status}
	switch c.Statuses().Classify(status) {
	case providers.StateReady:
		videoURL := ""
		duration := ""
		if decoded.Data.TaskResult != nil {
			for _, video := range decoded.Data.TaskResult.Videos {
				if u := strings.TrimSpace(video.URL); u != "" {
					videoURL = u
					duration = strings.TrimSpace(video.Duration)
					break
				}
			}
		}
		if videoURL == "" {
			return providers.Outcome{}, providers.NewProviderError(c.Kind(), "succeeded task has no videos")
		}
		meta := map[string]string{}
		if duration != "" {
			meta["duration"] = duration
		}
		out.Artifact = &providers.Artifact{URL: videoURL, MIME: "video/mp4", Metadata: meta}
	case providers.StateFailed:
		out.FailureMessage = strings.TrimSpace(decoded.Message)
		if out.FailureMessage == "" {
			out.FailureMessage = "video generation failed"
		}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, cred providers.Credential, payload, dest any) error {
	token, err := mintToken(cred)
	if err != nil {
		return err
	}
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("kling: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("kling: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("kling: http request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("kling: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var detail struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &detail); err == nil && strings.TrimSpace(detail.Message) != "" {
			return providers.NewProviderError(c.Kind(), strings.TrimSpace(detail.Message))
		}
		return providers.NewHTTPError(c.Kind(), resp.StatusCode)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("kling: decode response: %w", err)
	}
	return nil
}

// mintToken creates the short-lived HS256 token Kling expects, signed with
// the secret half of the 'access_key,secret_key' credential.
func mintToken(cred providers.Credential) (string, error) {
	if cred.IsZero() {
		return "", ErrMissingAPIKey
	}
	parts := strings.Split(cred.Secret, ",")
	if len(parts) != 2 {
		return "", ErrInvalidKeyFormat
	}
	accessKey := strings.TrimSpace(parts[0])
	secretKey := strings.TrimSpace(parts[1])
	if accessKey == "" || secretKey == "" {
		return "", ErrInvalidKeyFormat
	}
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"iss": accessKey,
		"exp": now + 1800,
		"nbf": now - 5,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["typ"] = "JWT"
	return token.SignedString([]byte(secretKey))
}

func durationFor(seconds int) string {
	if seconds >= 10 {
		return "10"
	}
	return "5"
}

func aspectRatioFor(ratio string) string {
	switch strings.TrimSpace(ratio) {
	case "16:9", "9:16", "1:1":
		return strings.TrimSpace(ratio)
	default:
		return "16:9"
	}
}

var _ providers.Adapter = (*Client)(nil)
