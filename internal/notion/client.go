// Package notion stores holdings and scraps in two Notion databases.
//
// Every exported operation returns an error wrapping one of the apperrors
// kinds; raw transport errors never escape unclassified.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

const (
	// APIVersion is the Notion-Version header sent with every request.
	APIVersion     = "2022-06-28"
	defaultBaseURL = "https://api.notion.com"
)

// Config holds the credentials and transport settings.
type Config struct {
	APIKey         string
	PortfolioDBID  string
	ScrapDBID      string
	BaseURL        string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

// Client talks to the Notion REST API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	portfolioDB string
	scrapDB     string
	maxAttempts int
	backoff     time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
	log         zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSleep replaces the wait between retries.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// WithClock replaces time.Now for record dates.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a client. Missing transport settings get the defaults: 20s
// timeout, 3 attempts, 1s initial backoff.
func New(cfg Config, log zerolog.Logger, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		portfolioDB: cfg.PortfolioDBID,
		scrapDB:     cfg.ScrapDBID,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.InitialBackoff,
		sleep:       sleepContext,
		now:         time.Now,
		log:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status reports which configuration pieces are present.
func (c *Client) Status() model.ConnectionStatus {
	s := model.ConnectionStatus{
		APIKey:      c.apiKey != "",
		PortfolioDB: c.portfolioDB != "",
		ScrapDB:     c.scrapDB != "",
	}
	s.FullyReady = s.APIKey && s.PortfolioDB && s.ScrapDB
	return s
}

func (c *Client) requirePortfolio() error {
	if c.apiKey == "" || c.portfolioDB == "" {
		return fmt.Errorf("portfolio database: %w", apperrors.ErrNotConfigured)
	}
	return nil
}

func (c *Client) requireScraps() error {
	if c.apiKey == "" || c.scrapDB == "" {
		return fmt.Errorf("scrap database: %w", apperrors.ErrNotConfigured)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// apiError is Notion's error body.
type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do sends one logical request with bounded retry. Rate limits, timeouts and
// dropped connections are retried with exponential backoff; anything else
// fails immediately.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doRetry(ctx, method, path, body, out, isTransient)
}

// create posts a new page. A timeout or dropped connection may follow a
// write that landed, so only failures where Notion never took the request
// are retried.
func (c *Client) create(ctx context.Context, body, out any) error {
	return c.doRetry(ctx, http.MethodPost, "/v1/pages", body, out, notDelivered)
}

func (c *Client) doRetry(ctx context.Context, method, path string, body, out any, retryable func(error) bool) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	backoff := c.backoff
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, backoff); err != nil {
				return fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
			}
			backoff *= 2
		}

		status, data, err := c.send(ctx, method, path, payload)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %v", apperrors.ErrTransient, ctx.Err())
			}
			if !retryable(err) {
				if isTransient(err) {
					return fmt.Errorf("%w: %v (not retried)", apperrors.ErrTransient, err)
				}
				return fmt.Errorf("%w: %v", apperrors.ErrRemote, err)
			}
			c.log.Warn().Err(err).Int("attempt", attempt+1).Str("path", path).Msg("notion request failed, retrying")
			lastErr = err
			continue
		}

		if status == http.StatusTooManyRequests {
			c.log.Warn().Int("attempt", attempt+1).Str("path", path).Msg("notion rate limited, retrying")
			lastErr = errors.New("rate limited")
			continue
		}

		if status != http.StatusOK {
			return remoteError(status, data)
		}

		if out != nil {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("%w: decode response: %v", apperrors.ErrRemote, err)
			}
		}
		return nil
	}

	return fmt.Errorf("%w: %v after %d attempts", apperrors.ErrTransient, lastErr, c.maxAttempts)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", APIVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

func remoteError(status int, data []byte) error {
	var e apiError
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &e) == nil && e.Message != "" {
		msg = e.Message
	}
	if status == http.StatusNotFound || e.Code == "object_not_found" {
		return fmt.Errorf("%w: %w: %s", apperrors.ErrNotFound, apperrors.ErrRemote, msg)
	}
	return fmt.Errorf("%w: %s (status %d)", apperrors.ErrRemote, msg, status)
}

func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF)
}

func notDelivered(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
