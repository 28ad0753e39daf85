// Package leonardo implements the asynchronous Leonardo image backend.
package leonardo

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
var ErrMissingAPIKey = errors.New("leonardo: api key is required")

// Options configures the Leonardo client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *zerolog.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the Leonardo generations API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type createRequest struct {
	ModelID     string `json:"modelId"`
	Prompt      string `json:"prompt"`
	NumImages   int    `json:"num_images"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	PromptMagic bool   `json:"promptMagic,omitempty"`
}

type createResponse struct {
	Job struct {
		GenerationID string `json:"generationId"`
	} `json:"sdGenerationJob"`
	Error string `json:"error"`
}

type statusResponse struct {
	Generation struct {
		Status string `json:"status"`
		Images []struct {
			URL string `json:"url"`
		} `json:"generated_images"`
	} `json:"generations_by_pk"`
	Error string `json:"error"`
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
		baseURL = "https://cloud.leonardo.ai/api/rest/v1"
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, logger: logger}
}

// Kind identifies this backend.
func (c *Client) Kind() providers.Kind { return providers.KindLeonardo }

// Statuses declares the vocabulary Leonardo generation records report.
func (c *Client) Statuses() providers.StatusVocabulary {
	return providers.StatusVocabulary{
		Ready:    []string{"COMPLETE"},
		NotReady: []string{"PENDING"},
		Failed:   []string{"FAILED"},
	}
}

// Submit creates a generation and returns the deferred job handle.
func (c *Client) Submit(ctx context.Context, req providers.Request, cred providers.Credential) (providers.Outcome, error) {
	if cred.IsZero() {
		return providers.Outcome{}, ErrMissingAPIKey
	}
	prompt := providers.EffectivePrompt(req)
	if prompt == "" {
		return providers.Outcome{}, errors.New("leonardo: prompt is required")
	}
	width, height := dimensionsFor(req)
	payload := createRequest{
		ModelID:   req.ModelID,
		Prompt:    prompt,
		NumImages: 1,
		Width:     width,
		Height:    height,
	}

	var decoded createResponse
	if err := c.do(ctx, http.MethodPost, "/generations", cred, payload, &decoded); err != nil {
		return providers.Outcome{}, err
	}
	taskID := strings.TrimSpace(decoded.Job.GenerationID)
	if taskID == "" {
		msg := strings.TrimSpace(decoded.Error)
		if msg == "" {
			msg = "missing generation id"
		}
		return providers.Outcome{}, providers.NewProviderError(c.Kind(), msg)
	}
	c.logger.Debug().Str("task_id", taskID).Msg("leonardo: generation submitted")
	return providers.Outcome{TaskID: taskID, RawStatus: "PENDING"}, nil
}

// Poll reads the generation record; it has no side effect beyond the query.
func (c *Client) Poll(ctx context.Context, taskID string, cred providers.Credential) (providers.Outcome, error) {
	if cred.IsZero() {
		return providers.Outcome{}, ErrMissingAPIKey
	}
	var decoded statusResponse
	if err := c.do(ctx, http.MethodGet, "/generations/"+taskID, cred, nil, &decoded); err != nil {
		return providers.Outcome{}, err
	}
	status := strings.TrimSpace(decoded.Generation.Status)
	out := providers.Outcome{TaskID: taskID, RawStatus: status}
	switch c.Statuses().Classify(status) {
	case providers.StateReady:
		imageURL := ""
		for _, img := range decoded.Generation.Images {
			if u := strings.TrimSpace(img.URL); u != "" {
				imageURL = u
				break
			}
		}
		if imageURL == "" {
			return providers.Outcome{}, providers.NewProviderError(c.Kind(), "completed generation has no images")
		}
		out.Artifact = &providers.Artifact{URL: imageURL, MIME: "image/jpeg"}
	case providers.StateFailed:
		out.FailureMessage = strings.TrimSpace(decoded.Error)
		if out.FailureMessage == "" {
			out.FailureMessage = "generation failed"
		}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, cred providers.Credential, payload, dest any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("leonardo: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("leonardo: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cred.Secret)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("leonardo: http request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("leonardo: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var detail struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &detail); err == nil {
			if msg := strings.TrimSpace(detail.Error); msg != "" {
				return providers.NewProviderError(c.Kind(), msg)
			}
			if msg := strings.TrimSpace(detail.Message); msg != "" {
				return providers.NewProviderError(c.Kind(), msg)
			}
		}
		return providers.NewHTTPError(c.Kind(), resp.StatusCode)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("leonardo: decode response: %w", err)
	}
	return nil
}

func dimensionsFor(req providers.Request) (int, int) {
	switch strings.TrimSpace(req.AspectRatio) {
	case "16:9":
		return 1280, 720
	case "9:16":
		return 720, 1280
	case "4:3":
		return 1024, 768
	case "3:4":
		return 768, 1024
	default:
		return 1024, 1024
	}
}

var _ providers.Adapter = (*Client)(nil)
