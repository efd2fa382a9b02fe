// Package client talks to a running lookup server's /api/pokemon endpoint.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/codyseavey/pokecard-lookup/internal/logging"
	"github.com/codyseavey/pokecard-lookup/internal/models"
	"github.com/codyseavey/pokecard-lookup/internal/services"
)

// ErrServerUnreachable wraps transport failures talking to the server.
var ErrServerUnreachable = errors.New("lookup server unreachable")

// APIError is a non-200 answer from the server. Message is the server's
// {"error": ...} text, or a generic line when the body had none.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logging.OrNop(logger),
	}
}

// Search runs req against the server. Facet filters are not sent; callers
// filter the returned set locally.
func (c *Client) Search(ctx context.Context, req services.SearchRequest) ([]models.Card, error) {
	if strings.TrimSpace(req.Term) == "" {
		return nil, services.ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", req.Term)
	if req.Scope != "" {
		params.Set("language", string(req.Scope))
	}
	if req.Field != "" {
		params.Set("type", string(req.Field))
	}
	reqURL := fmt.Sprintf("%s/api/pokemon?%s", c.baseURL, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServerUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrServerUnreachable, err)
	}
	c.logger.Debug("search request",
		zap.String("url", reqURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		msg := fmt.Sprintf("server returned status %d", resp.StatusCode)
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var searchResp models.SearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", services.ErrMalformedResponse, err)
	}
	return searchResp.Data, nil
}
