package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ppiankov/hoverlex/internal/dom"
	"github.com/ppiankov/hoverlex/internal/model"
	"github.com/ppiankov/hoverlex/internal/util"
	"github.com/ppiankov/hoverlex/internal/worker"
)

// maxResponseBytes caps a dictionary answer
const maxResponseBytes = 1 << 20

// HTTPService POSTs the request as JSON to a dictionary endpoint and decodes
// a model.LookupResponse from the reply
type HTTPService struct {
	endpoint   string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	limiter    *worker.Limiter
}

// NewHTTPService creates an HTTP lookup client
func NewHTTPService(lookup model.LookupConfig, httpCfg model.HTTPConfig) (*HTTPService, error) {
	if lookup.Endpoint == "" {
		return nil, fmt.Errorf("http lookup provider needs an endpoint")
	}
	u, err := url.Parse(lookup.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint must be http or https: %s", lookup.Endpoint)
	}

	timeout := lookup.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &HTTPService{
		endpoint:  lookup.Endpoint,
		apiKey:    lookup.APIKey,
		userAgent: httpCfg.UserAgent,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: util.NewTransport(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
		},
		limiter: worker.NewLimiter(lookup.RateLimit, lookup.Burst),
	}, nil
}

// Lookup sends req and waits for the answer
func (s *HTTPService) Lookup(ctx context.Context, req model.LookupRequest) (*model.LookupResponse, error) {
	if err := s.limiter.Wait(ctx, s.endpoint); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		httpReq.Header.Set("User-Agent", s.userAgent)
	}
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	var answer model.LookupResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&answer); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	answer.MatchLength = max(0, min(answer.MatchLength, dom.Len(req.Text)))
	if answer.Source == "" {
		answer.Source = "http"
	}
	return &answer, nil
}
