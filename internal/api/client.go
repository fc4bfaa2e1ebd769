// Package api is the HTTP client for the BoardEasy REST backend. The backend
// owns all business truth; this package only shapes requests, attaches the
// session's bearer token, and normalizes responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"boardeasy/internal/config"
	"boardeasy/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration

	// token is set per session via WithAuth; empty on the shared client.
	token string
}

// New constructs an unauthenticated client from config.
func New(cfg config.BackendConfig, logger *zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		logger:     logger,
	}
}

// UseRedisCache enables read-through caching for catalog GETs.
func (c *Client) UseRedisCache(client *redis.Client, ttl time.Duration) {
	c.redis = client
	c.cacheTTL = ttl
}

// WithAuth returns a copy of the client bound to one session's bearer token.
// The copy shares the transport, limiter and cache.
func (c *Client) WithAuth(token string) *Client {
	bound := *c
	bound.token = token
	return &bound
}

// requireAuth guards endpoints that must carry a token. Failing here is the
// client-side equivalent of the /login redirect: no request is issued.
func (c *Client) requireAuth() error {
	if c.token == "" {
		return ErrNoSession
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, out any) error {
	return c.do(ctx, endpoint, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint, path string, body, out any) error {
	return c.do(ctx, endpoint, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, endpoint, path string, body, out any) error {
	return c.do(ctx, endpoint, http.MethodPut, path, body, out)
}

// getCollection fetches and normalizes a list endpoint.
func getCollection[T any](ctx context.Context, c *Client, endpoint, path string) ([]T, error) {
	var raw json.RawMessage
	if err := c.get(ctx, endpoint, path, &raw); err != nil {
		return nil, err
	}
	return normalizeCollection[T](raw)
}

// postCollection normalizes a list returned from a POST endpoint.
func postCollection[T any](ctx context.Context, c *Client, endpoint, path string, body any) ([]T, error) {
	var raw json.RawMessage
	if err := c.post(ctx, endpoint, path, body, &raw); err != nil {
		return nil, err
	}
	return normalizeCollection[T](raw)
}

// getCachedCollection is getCollection with an optional redis read-through.
func getCachedCollection[T any](ctx context.Context, c *Client, endpoint, path, cacheKey string) ([]T, error) {
	if c.redis != nil && c.cacheTTL > 0 {
		if val, err := c.redis.Get(ctx, cacheKey).Result(); err == nil {
			var out []T
			if err := json.Unmarshal([]byte(val), &out); err == nil {
				return out, nil
			}
		}
	}

	out, err := getCollection[T](ctx, c, endpoint, path)
	if err != nil {
		return nil, err
	}

	if c.redis != nil && c.cacheTTL > 0 {
		if data, err := json.Marshal(out); err == nil {
			_ = c.redis.Set(ctx, cacheKey, data, c.cacheTTL).Err()
		}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.ObserveAPI(endpoint, "network_error", elapsed)
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("backend call failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveAPI(endpoint, fmt.Sprintf("http_%d", resp.StatusCode), elapsed)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Status: resp.StatusCode, Endpoint: endpoint, Body: string(snippet)}
	}

	metrics.ObserveAPI(endpoint, "ok", elapsed)
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// sizeQuery renders the optional ?size= parameter of list endpoints.
func sizeQuery(size int) string {
	if size <= 0 {
		return ""
	}
	return fmt.Sprintf("?size=%d", size)
}
