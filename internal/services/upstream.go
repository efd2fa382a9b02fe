package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/codyseavey/pokecard-lookup/internal/config"
	"github.com/codyseavey/pokecard-lookup/internal/metrics"
)

// upstream is the HTTP plumbing shared by every card source: one GET, an
// optional API key header, a per-request timeout and client-side pacing.
type upstream struct {
	source  Source
	client  *http.Client
	cfg     config.UpstreamConfig
	limiter *rate.Limiter
	logger  *zap.Logger
}

func newUpstream(source Source, cfg config.UpstreamConfig, logger *zap.Logger) *upstream {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	cfg.PageSize = config.ClampPageSize(cfg.PageSize)
	if cfg.TimeoutMS <= 0 {
		cfg.TimeoutMS = config.DefaultTimeoutMS
	}

	return &upstream{
		source: source,
		client: &http.Client{
			Timeout: cfg.Timeout(),
		},
		cfg:     cfg,
		limiter: limiter,
		logger:  logger,
	}
}

// getJSON issues a GET to reqURL and decodes the body into into. Every
// failure comes back as an *UpstreamError.
func (u *upstream) getJSON(ctx context.Context, reqURL string, into any) error {
	start := time.Now()
	err := u.doGet(ctx, reqURL, into)
	metrics.UpstreamLatency.WithLabelValues(string(u.source)).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequestsTotal.WithLabelValues(string(u.source), resultLabel(err)).Inc()
	return err
}

func (u *upstream) doGet(ctx context.Context, reqURL string, into any) error {
	if err := u.limiter.Wait(ctx); err != nil {
		return &UpstreamError{Source: u.source, Kind: ErrUpstreamUnavailable, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, u.cfg.Timeout())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &UpstreamError{Source: u.source, Kind: ErrUpstreamUnavailable, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	if u.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", u.cfg.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	u.logger.Debug("upstream request", zap.String("source", string(u.source)), zap.String("url", reqURL))

	resp, err := u.client.Do(req)
	if err != nil {
		return &UpstreamError{Source: u.source, Kind: ErrUpstreamUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		u.logger.Warn("upstream returned error status",
			zap.String("source", string(u.source)),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return &UpstreamError{Source: u.source, StatusCode: resp.StatusCode, Kind: classifyStatus(resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return &UpstreamError{Source: u.source, StatusCode: resp.StatusCode, Kind: ErrMalformedResponse, Err: err}
	}
	return nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUpstreamAuth):
		return "auth"
	case errors.Is(err, ErrUpstreamRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "unavailable"
	}
}
