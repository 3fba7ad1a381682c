package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-callflow/internal/core/model"
	"github.com/penwyp/go-callflow/internal/core/watch"
	"github.com/penwyp/go-callflow/internal/util"
)

const (
	callDetailPath   = "/sip/call-detail"
	watchWindowPath  = "/sip/watch"
	refreshTokenPath = "/refresh_token"

	// Query timestamps are UTC RFC3339 without fractional seconds
	queryTimeLayout = "2006-01-02T15:04:05Z"
)

// Client talks to the capture backend's SIP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     util.LoggerInterface

	mu    sync.RWMutex
	token string
}

// Option customises client instantiation
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithToken sets the initial bearer token
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithLogger overrides the client logger
func WithLogger(logger util.LoggerInterface) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New constructs a Client pointing at the backend base URL. The default HTTP
// client keeps cookies, which the refresh endpoint relies on.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		return nil, fmt.Errorf("backend base url must not be empty")
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second, Jar: jar},
		logger:     util.Named("backend"),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// APIError represents a non-2xx response from the backend
type APIError struct {
	Status  int
	Message string
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, e.Message)
}

// Token returns the bearer token currently in use
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// FetchCallDetail returns the messages of the given call sessions
func (c *Client) FetchCallDetail(ctx context.Context, sids []string) (*model.DetailResponse, error) {
	cleaned := make([]string, 0, len(sids))
	for _, sid := range sids {
		if sid = strings.TrimSpace(sid); sid != "" {
			cleaned = append(cleaned, sid)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("at least one session id is required")
	}

	params := url.Values{}
	params.Set("sids", strings.Join(cleaned, ","))
	params.Set("rtcp", "false")

	var resp model.DetailResponse
	if err := c.get(ctx, callDetailPath, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch call detail: %w", err)
	}
	if resp.Detail == nil {
		resp.Detail = []model.CallSession{}
	}
	return &resp, nil
}

// FetchWatchWindow returns the messages captured for req.Scope in [req.Start, req.End)
func (c *Client) FetchWatchWindow(ctx context.Context, req watch.WindowRequest) ([]model.Message, error) {
	params := url.Values{}
	params.Set("domain", req.Scope)
	if len(req.Users) > 0 {
		params.Set("users", strings.Join(req.Users, ","))
	}
	params.Set("start_date", req.Start.UTC().Format(queryTimeLayout))
	params.Set("end_date", req.End.UTC().Format(queryTimeLayout))

	var resp model.WatchResponse
	if err := c.get(ctx, watchWindowPath, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch watch window: %w", err)
	}
	return resp.Messages, nil
}

// RefreshToken asks the backend for a new access token and stores it
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, refreshTokenPath, nil, "", &payload); err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("failed to refresh token: empty access_token")
	}
	c.setToken(payload.AccessToken)
	return payload.AccessToken, nil
}

// get performs an authenticated GET. A 401 triggers one token refresh and one retry.
func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	err := c.do(ctx, path, params, c.Token(), v)
	if !isUnauthorized(err) {
		return err
	}

	c.logger.Info("access token rejected, refreshing", util.F("path", path))
	token, refreshErr := c.RefreshToken(ctx)
	if refreshErr != nil {
		return refreshErr
	}
	return c.do(ctx, path, params, token, v)
}

func (c *Client) do(ctx context.Context, path string, params url.Values, token string, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("backend request",
		util.F("path", path),
		util.F("status", resp.StatusCode),
		util.F("bytes", len(body)),
		util.F("elapsed", time.Since(start).Round(time.Millisecond)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return APIError{Status: resp.StatusCode, Message: extractError(body)}
	}
	if v == nil || len(body) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isUnauthorized(err error) bool {
	var apiErr APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

func extractError(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := sonic.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}
	if payload.Error != "" {
		return strings.TrimSpace(payload.Error)
	}
	return strings.TrimSpace(payload.Message)
}
