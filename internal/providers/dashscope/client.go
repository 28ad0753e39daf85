// Package dashscope implements the synchronous DashScope image backend.
package dashscope

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
)

// ErrMissingAPIKey indicates a submit was attempted without credentials.
var ErrMissingAPIKey = errors.New("dashscope: api key is required")

// DashScope accepts at most a handful of conditioning images per call; extra
// reference assets are silently dropped.
const maxReferenceAssets = 3

// Options configures the DashScope client.
type Options struct {
	BaseURL        string
	DefaultSize    string
	HTTPClient     *http.Client
	Logger         *zerolog.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the DashScope multimodal generation API.
type Client struct {
	baseURL     string
	defaultSize string
	httpClient  *http.Client
	logger      zerolog.Logger
}

type generationRequest struct {
	Model      string           `json:"model"`
	Input      generationInput  `json:"input"`
	Parameters generationParams `json:"parameters"`
}

type generationInput struct {
	Messages []generationMessage `json:"messages"`
}

type generationMessage struct {
	Role    string              `json:"role"`
	Content []generationContent `json:"content"`
}

type generationContent struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

type generationParams struct {
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Size           string `json:"size,omitempty"`
}

type generationResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content []struct {
					Image string `json:"image"`
					Text  string `json:"text"`
				} `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Usage struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"usage"`
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 45 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://dashscope-intl.aliyuncs.com/api/v1"
	}
	defaultSize := strings.TrimSpace(opts.DefaultSize)
	if defaultSize == "" {
		defaultSize = "1328*1328"
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		baseURL:     baseURL,
		defaultSize: defaultSize,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// Kind identifies this backend.
func (c *Client) Kind() providers.Kind { return providers.KindDashScope }

// Statuses declares the vocabulary DashScope task responses can report.
func (c *Client) Statuses() providers.StatusVocabulary {
	return providers.StatusVocabulary{
		Ready:    []string{"succeeded"},
		NotReady: []string{"pending", "running"},
		Failed:   []string{"failed", "canceled"},
	}
}

// Submit invokes the generation endpoint once and returns the artifact
// synchronously. DashScope never hands back a task for this endpoint.
func (c *Client) Submit(ctx context.Context, req providers.Request, cred providers.Credential) (providers.Outcome, error) {
	if cred.IsZero() {
		return providers.Outcome{}, ErrMissingAPIKey
	}
	prompt := providers.EffectivePrompt(req)
	if prompt == "" {
		return providers.Outcome{}, errors.New("dashscope: prompt is required")
	}

	content := []generationContent{{Text: prompt}}
	refs := req.ReferenceAssets
	if len(refs) > maxReferenceAssets {
		refs = refs[:maxReferenceAssets]
	}
	for _, ref := range refs {
		if len(ref.Data) == 0 {
			continue
		}
		content = append(content, generationContent{Image: dataURL(ref)})
	}
	payload := generationRequest{
		Model: req.ModelID,
		Input: generationInput{
			Messages: []generationMessage{{Role: "user", Content: content}},
		},
		Parameters: generationParams{
			NegativePrompt: providers.DefaultNegativePrompt,
			Size:           c.sizeFor(req),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return providers.Outcome{}, fmt.Errorf("dashscope: encode request: %w", err)
	}
	endpoint := c.baseURL + "/services/aigc/multimodal-generation/generation"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return providers.Outcome{}, fmt.Errorf("dashscope: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cred.Secret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return providers.Outcome{}, fmt.Errorf("dashscope: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return providers.Outcome{}, fmt.Errorf("dashscope: read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Message != "" {
			return providers.Outcome{}, providers.NewProviderError(c.Kind(), fmt.Sprintf("%s (%s)", detail.Message, detail.Code))
		}
		return providers.Outcome{}, providers.NewHTTPError(c.Kind(), resp.StatusCode)
	}

	var decoded generationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return providers.Outcome{}, fmt.Errorf("dashscope: decode response: %w", err)
	}
	if decoded.Code != "" {
		return providers.Outcome{}, providers.NewProviderError(c.Kind(), fmt.Sprintf("%s (%s)", decoded.Message, decoded.Code))
	}

	artifact, err := c.artifactFrom(ctx, decoded)
	if err != nil {
		return providers.Outcome{}, err
	}
	c.logger.Debug().
		Str("model", req.ModelID).
		Str("request_id", decoded.RequestID).
		Str("url", artifact.URL).
		Msg("dashscope: generated image asset")
	return providers.Outcome{RawStatus: "succeeded", Artifact: artifact}, nil
}

// Poll is never called for this backend; all its models are synchronous.
func (c *Client) Poll(ctx context.Context, taskID string, cred providers.Credential) (providers.Outcome, error) {
	return providers.Outcome{}, errors.New("dashscope: poll is not supported for synchronous models")
}

// artifactFrom extracts the generated image from the response. The content
// list usually carries a direct image URL; some deployments instead embed a
// JSON blob inside a free-text entry, which is scanned best-effort.
func (c *Client) artifactFrom(ctx context.Context, decoded generationResponse) (*providers.Artifact, error) {
	imageURL := ""
	meta := map[string]string{}
	for _, choice := range decoded.Output.Choices {
		for _, entry := range choice.Message.Content {
			if u := strings.TrimSpace(entry.Image); u != "" && imageURL == "" {
				imageURL = u
			}
			if text := strings.TrimSpace(entry.Text); text != "" && imageURL == "" {
				obj, ok := providers.ExtractJSONObject(text)
				if !ok {
					c.logger.Debug().Str("text", text).Msg("dashscope: no json object in text content")
					continue
				}
				if u := strings.TrimSpace(providers.StringField(obj, "url")); u != "" {
					imageURL = u
				}
				if w := providers.IntField(obj, "width"); w > 0 {
					meta["width"] = strconv.Itoa(w)
				}
				if h := providers.IntField(obj, "height"); h > 0 {
					meta["height"] = strconv.Itoa(h)
				}
			}
		}
	}
	if imageURL == "" {
		return nil, providers.NewProviderError(c.Kind(), "empty image url")
	}
	data, mime, err := c.download(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	if decoded.Usage.Width > 0 {
		meta["width"] = strconv.Itoa(decoded.Usage.Width)
	}
	if decoded.Usage.Height > 0 {
		meta["height"] = strconv.Itoa(decoded.Usage.Height)
	}
	return &providers.Artifact{Data: data, URL: imageURL, MIME: mime, Metadata: meta}, nil
}

func (c *Client) download(ctx context.Context, imageURL string) ([]byte, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil || parsed.Scheme == "" {
		return nil, "", fmt.Errorf("dashscope: invalid image url: %s", imageURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("dashscope: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("dashscope: download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", providers.NewHTTPError(c.Kind(), resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("dashscope: read image: %w", err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/png"
	}
	return data, mime, nil
}

func (c *Client) sizeFor(req providers.Request) string {
	if res := strings.TrimSpace(req.Resolution); res != "" {
		return res
	}
	switch strings.TrimSpace(req.AspectRatio) {
	case "1:1":
		return "1328*1328"
	case "16:9":
		return "1664*928"
	case "9:16":
		return "928*1664"
	case "4:3":
		return "1472*1140"
	case "3:4":
		return "1140*1472"
	default:
		return c.defaultSize
	}
}

func dataURL(ref providers.ReferenceAsset) string {
	mime := strings.TrimSpace(ref.MIME)
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(ref.Data)
}

var _ providers.Adapter = (*Client)(nil)
