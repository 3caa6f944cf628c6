package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Default inference service configuration values
const (
	DefaultTimeout = 30 * time.Second
	DefaultBaseURL = "http://127.0.0.1:8500"
)

// Client is a loaded model. Tokenization and the forward pass run in the
// inference sidecar; the client sends text, receives logits, and maps the
// winning logit to a label.
type Client struct {
	path       string
	kind       Kind
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL sets the inference service URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithAPIKey sets a bearer token for the inference service.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// Load opens the model at path. The model file must exist locally even
// though inference is remote, so a bad path fails at load time instead of
// at the first prediction.
func Load(path string, opts ...Option) (*Client, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("model not found at %s: %w", path, err)
	}

	c := &Client{
		path:    path,
		kind:    KindFromPath(path),
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	if url := os.Getenv("NC_INFER_URL"); url != "" {
		c.baseURL = url
	}
	if key := os.Getenv("NC_INFER_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Kind returns the model's task.
func (c *Client) Kind() Kind {
	return c.kind
}

// IsMacroModel reports whether this model classifies macro intents.
func (c *Client) IsMacroModel() bool {
	return c.kind == MacroIntent
}

// Path returns the model path given to Load.
func (c *Client) Path() string {
	return c.path
}

type inferRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

type inferResponse struct {
	Logits []float32 `json:"logits"`
	Error  string    `json:"error,omitempty"`
}

// Predict returns the winning label for text.
func (c *Client) Predict(ctx context.Context, text string) (string, error) {
	label, _, err := c.PredictWithScore(ctx, text)
	return label, err
}

// PredictWithScore returns the winning label and its softmax probability.
func (c *Client) PredictWithScore(ctx context.Context, text string) (string, float32, error) {
	logits, err := c.fetchLogits(ctx, text)
	if err != nil {
		return "", 0, err
	}

	labels := c.kind.Labels()
	best, prob := argmaxWithProb(logits)
	if best >= len(labels) {
		return "unknown", prob, nil
	}
	return labels[best], prob, nil
}

func (c *Client) fetchLogits(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(inferRequest{Model: c.path, Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/logits", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("inference service returned %d: %s", resp.StatusCode, raw)
	}

	var out inferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding inference response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("inference failed: %s", out.Error)
	}
	if len(out.Logits) == 0 {
		return nil, fmt.Errorf("inference returned no logits")
	}
	return out.Logits, nil
}
