// Package service adapts lookup backends to the anchor gate: an HTTP
// dictionary endpoint, an OpenAI-compatible model, a response cache in front
// of either, and an asynchronous dispatcher.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/hoverlex/internal/cache"
	"github.com/ppiankov/hoverlex/internal/llm"
	"github.com/ppiankov/hoverlex/internal/model"
	"github.com/rs/zerolog"
)

// ErrDisabled is returned when no lookup backend is configured
var ErrDisabled = errors.New("lookup service disabled")

// Service answers lookup requests
type Service interface {
	Lookup(ctx context.Context, req model.LookupRequest) (*model.LookupResponse, error)
}

// Func adapts a function to a Service
type Func func(ctx context.Context, req model.LookupRequest) (*model.LookupResponse, error)

// Lookup calls f
func (f Func) Lookup(ctx context.Context, req model.LookupRequest) (*model.LookupResponse, error) {
	return f(ctx, req)
}

// New builds the configured backend, wrapped in a cache when caching is enabled.
// It returns ErrDisabled when cfg.Lookup.Provider is empty.
func New(cfg *model.Config, log zerolog.Logger) (Service, error) {
	var svc Service

	switch name := strings.ToLower(cfg.Lookup.Provider); name {
	case "":
		return nil, ErrDisabled

	case "http":
		h, err := NewHTTPService(cfg.Lookup, cfg.HTTP)
		if err != nil {
			return nil, err
		}
		svc = h

	case "openai", "ollama":
		p, err := llm.NewProvider(llm.ConfigFromModel(cfg.Lookup, cfg.HTTP))
		if err != nil {
			return nil, fmt.Errorf("create %s provider: %w", name, err)
		}
		svc = p

	default:
		return nil, fmt.Errorf("unknown lookup provider: %s (supported: http, openai, ollama)", cfg.Lookup.Provider)
	}

	log.Debug().Str("provider", cfg.Lookup.Provider).Msg("lookup service ready")

	if cfg.Cache.Enabled {
		store := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		svc = NewCachedService(svc, store, 0, log)
	}
	return svc, nil
}
