package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxRetries = 3

// APIError is a non-2xx answer from the journal API.
type APIError struct {
	StatusCode int
	Code       string
	Field      string
	Message    string
}

func (e *APIError) Error() string {
	msg := strconv.Itoa(e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	msg += ": " + e.Message
	if e.Field != "" {
		msg += " (field " + e.Field + ")"
	}
	return msg
}

// TradeAPI defines the operations journalctl uses.
type TradeAPI interface {
	CreateTrade(ctx context.Context, sub journal.Submission) (string, error)
	ListTrades(ctx context.Context, clock24 bool) ([]models.Trade, error)
	Health(ctx context.Context) error
}

// Client is a client for the trade journal HTTP API.
// It implements the TradeAPI.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
	backoff time.Duration
}

// ensure Client implements the interface
var _ TradeAPI = (*Client)(nil)

// NewClient creates a new journal API client.
func NewClient(cfg config.Client, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		client:  client,
		logger:  logger,
		limiter: rate.NewLimiter(limit, burst),
		backoff: time.Second,
	}
}

type createdResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"error"`
	Field   string `json:"field"`
}

// CreateTrade submits one trade and returns the ID the server assigned.
func (c *Client) CreateTrade(ctx context.Context, sub journal.Submission) (string, error) {
	req := c.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(sub).
		SetResult(&createdResponse{}).
		SetError(&errorResponse{})

	// POST is not idempotent: only retry when the server refused before processing.
	resp, err := c.doRequest(ctx, http.MethodPost, "/trade", req, false)
	if err != nil {
		return "", fmt.Errorf("failed to create trade: %w", err)
	}

	result := resp.Result().(*createdResponse)
	c.logger.Debug("Trade created", zap.String("trade_id", result.ID))
	return result.ID, nil
}

// ListTrades fetches every trade, most recent first.
func (c *Client) ListTrades(ctx context.Context, clock24 bool) ([]models.Trade, error) {
	var trades []models.Trade

	req := c.client.R().
		SetResult(&trades).
		SetError(&errorResponse{})
	if clock24 {
		req.SetQueryParam("clock", "24h")
	}

	if _, err := c.doRequest(ctx, http.MethodGet, "/trade", req, true); err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	return trades, nil
}

// Health checks that the server and its store are up.
func (c *Client) Health(ctx context.Context) error {
	req := c.client.R().SetError(&errorResponse{})
	if _, err := c.doRequest(ctx, http.MethodGet, "/health", req, true); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request, idempotent bool) (*resty.Response, error) {
	var resp *resty.Response
	var err error

	req.SetContext(ctx).SetHeader("X-Request-ID", uuid.NewString())

	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil
		}

		shouldRetry := false
		var retryAfter time.Duration

		if err == nil {
			statusCode := resp.StatusCode()
			switch {
			case statusCode == http.StatusTooManyRequests:
				shouldRetry = true
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			case statusCode >= 500 && idempotent:
				shouldRetry = true
			}
			err = apiError(resp)
		} else if idempotent && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			// a POST that failed in transit may still have been stored
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, err
		}
		if i == maxRetries-1 {
			break
		}

		if retryAfter == 0 {
			retryAfter = time.Duration(math.Pow(2, float64(i))) * c.backoff
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

func apiError(resp *resty.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode(), Message: resp.Status()}
	if body, ok := resp.Error().(*errorResponse); ok && body != nil && body.Message != "" {
		apiErr.Code = body.Code
		apiErr.Field = body.Field
		apiErr.Message = body.Message
	}
	return apiErr
}
