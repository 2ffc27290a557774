package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/spacesedan/nluflow/config"
	"github.com/spacesedan/nluflow/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	NLU_ANALYZE_PATH = "/v1/analyze"
	NLU_MODELS_PATH  = "/v1/models"
	IAM_GRANT_TYPE   = "urn:ibm:params:oauth:grant-type:apikey"
)

var (
	nluInstance *NLUClient
	nluOnce     sync.Once
)

// NLUClient talks to a remote natural language understanding service.
type NLUClient struct {
	Client     *http.Client
	baseURL    string
	version    string
	backoff    time.Duration
	maxRetries int
}

type NLUOption func(*NLUClient)

func WithHTTPClient(client *http.Client) NLUOption {
	return func(c *NLUClient) {
		c.Client = client
	}
}

func WithBackoff(initial time.Duration) NLUOption {
	return func(c *NLUClient) {
		c.backoff = initial
	}
}

func WithMaxRetries(retries int) NLUOption {
	return func(c *NLUClient) {
		if retries > 0 {
			c.maxRetries = retries
		}
	}
}

func NewNLUClient(cfg config.NLUConfig, opts ...NLUOption) *NLUClient {
	version := cfg.Version
	if version == "" {
		version = config.DEFAULT_NLU_VERSION
	}

	c := &NLUClient{
		baseURL:    cfg.URL,
		version:    version,
		backoff:    INITIAL_BACKOFF,
		maxRetries: MAX_RETRIES,
	}
	if cfg.APIKey != "" {
		c.Client = newIAMClient(cfg)
	} else {
		c.Client = &http.Client{Timeout: cfg.Timeout}
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetNLUClient returns the process wide client built from the environment.
func GetNLUClient() *NLUClient {
	nluOnce.Do(func() {
		cfg := config.Load().NLU
		slog.Info("[NLUClient] Initializing Client",
			slog.String("url", cfg.URL),
			slog.String("version", cfg.Version),
			slog.Duration("timeout", cfg.Timeout),
			slog.Bool("iam", cfg.APIKey != ""))
		nluInstance = NewNLUClient(cfg)
	})
	return nluInstance
}

// newIAMClient exchanges the API key for bearer tokens and refreshes them as
// they expire.
func newIAMClient(cfg config.NLUConfig) *http.Client {
	oauthConf := &clientcredentials.Config{
		ClientID:     "bx",
		ClientSecret: "bx",
		TokenURL:     cfg.IAMURL,
		EndpointParams: url.Values{
			"grant_type": {IAM_GRANT_TYPE},
			"apikey":     {cfg.APIKey},
		},
		AuthStyle: oauth2.AuthStyleInHeader,
	}

	base := &http.Client{Timeout: cfg.Timeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	client := oauthConf.Client(ctx)
	client.Timeout = cfg.Timeout
	return client
}

// Analyze sends req to the service and decodes the results.
func (c *NLUClient) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResults, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var result models.AnalysisResults
	slog.Info("[NLUClient] Requesting analysis",
		slog.Any("features", req.Features.Requested()))
	start := time.Now()

	if err := c.postJSON(ctx, c.endpoint(NLU_ANALYZE_PATH), req, &result); err != nil {
		slog.Error("[NLUClient] Analyze request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, err
	}

	slog.Info("[NLUClient] Analyze request successful",
		slog.Duration("elapsed", time.Since(start)))
	return &result, nil
}

// HealthCheck probes the model listing endpoint.
func (c *NLUClient) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(NLU_MODELS_PATH), nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := c.Client.Do(req)
	if err != nil {
		slog.Warn("[NLUClient] Health check failed",
			slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *NLUClient) endpoint(path string) string {
	return c.baseURL + path + "?version=" + url.QueryEscape(c.version)
}

// DoWithRetry sends the request built by newReq, retrying transport errors and
// retryable statuses with exponential backoff. The last response is returned
// as is so callers can inspect its status.
func (c *NLUClient) DoWithRetry(ctx context.Context, newReq func() (*http.Request, error)) (*http.Response, error) {
	backoff := c.backoff

	for attempt := 1; ; attempt++ {
		req, err := newReq()
		if err != nil {
			return nil, err
		}

		resp, err := c.Client.Do(req)
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if attempt >= c.maxRetries {
			return resp, err
		}
		if resp != nil {
			resp.Body.Close()
		}

		slog.Warn("[NLUClient] Request failed, will retry",
			slog.Int("attempt", attempt),
			slog.String("error", errMsg(err, resp)))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}
	}
}

func (c *NLUClient) postJSON(ctx context.Context, endpoint string, input any, output any) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	resp, err := c.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", USER_AGENT)
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &models.HTTPError{
			StatusCode: resp.StatusCode,
			URL:        endpoint,
			Message:    serviceMessage(respBody),
		}
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[NLUClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// serviceMessage pulls the "error" field out of an error body, falling back
// to the raw text.
func serviceMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return getPreview(body).Value.String()
}

func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
