package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/ppiankov/hoverlex/internal/cache"
	"github.com/ppiankov/hoverlex/internal/model"
	"github.com/rs/zerolog"
)

// CachedService memoizes successful answers. The pointer position is not part
// of the key: the same text and options give the same answer anywhere on screen.
type CachedService struct {
	next  Service
	store cache.Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedService wraps next. ttl 0 uses the store's defaults.
func NewCachedService(next Service, store cache.Cache, ttl time.Duration, log zerolog.Logger) *CachedService {
	return &CachedService{next: next, store: store, ttl: ttl, log: log}
}

// Lookup returns a cached answer or asks next and stores the result
func (s *CachedService) Lookup(ctx context.Context, req model.LookupRequest) (*model.LookupResponse, error) {
	key := requestKey(req)

	if raw, ok := s.store.Get(key); ok {
		var resp model.LookupResponse
		if err := json.Unmarshal(raw, &resp); err == nil {
			s.log.Debug().Str("text", req.Text).Msg("lookup cache hit")
			return &resp, nil
		}
		_ = s.store.Delete(key)
	}

	resp, err := s.next.Lookup(ctx, req)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		s.log.Warn().Err(err).Msg("encode lookup response for cache")
		return resp, nil
	}
	if err := s.store.Set(key, raw, s.ttl); err != nil {
		s.log.Warn().Err(err).Msg("store lookup response")
	}
	return resp, nil
}

func requestKey(req model.LookupRequest) string {
	return cache.Key(req.Text, req.Prefix, strconv.Itoa(req.Options.Dictionary), req.Options.Language)
}
