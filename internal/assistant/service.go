package assistant

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/opsdeck/netops-go-backend/internal/ai"
	"github.com/opsdeck/netops-go-backend/internal/models"
)

const (
	snapshotCacheKey = "assistant:context"
	snapshotCacheTTL = 15 * time.Second
)

// Reader is the slice of the request store the assistant needs.
type Reader interface {
	Latest(ctx context.Context, limit int) ([]models.ChangeRequest, error)
}

// Service answers questions about stored operations. It never returns an
// error: every failure path degrades to a best-effort answer.
type Service struct {
	store    Reader
	cache    *redis.Client
	resolver Resolver
}

// NewService selects the resolver strategy at construction time: a configured
// credential enables the model-assisted resolver, otherwise the deterministic
// keyword resolver is used alone. cache may be nil.
func NewService(store Reader, cache *redis.Client, cfg Config) *Service {
	var resolver Resolver = KeywordResolver{}
	if cfg.APIKey != "" {
		mr := &ModelResolver{
			Client: ai.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
			Model:  cfg.Model,
		}
		if cfg.FallbackOnError {
			mr.Fallback = KeywordResolver{}
		}
		resolver = mr
	}
	return &Service{store: store, cache: cache, resolver: resolver}
}

// Answer resolves the question against a fresh context snapshot and composes
// the grounded reply. An empty snapshot short-circuits before any resolver
// call, model-assisted ones included.
func (s *Service) Answer(ctx context.Context, question string) (string, []string) {
	snap := s.snapshot(ctx)
	if snap.Empty() {
		return Compose(Result{Intent: IntentHelp}, snap)
	}
	res := s.resolver.Resolve(ctx, question, snap)
	return Compose(res, snap)
}

// snapshot builds the bounded context window, with a short-lived Redis cache
// in front of the store. Cache failures are ignored; the store is the source
// of truth.
func (s *Service) snapshot(ctx context.Context) Snapshot {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, snapshotCacheKey).Result(); err == nil {
			var snap Snapshot
			if json.Unmarshal([]byte(raw), &snap) == nil {
				return snap
			}
		}
	}

	requests, err := s.store.Latest(ctx, ContextWindow)
	if err != nil {
		log.Printf("assistant: context build failed: %v", err)
		return Snapshot{}
	}
	snap := BuildSnapshot(requests)

	if s.cache != nil {
		if raw, err := json.Marshal(snap); err == nil {
			if err := s.cache.Set(ctx, snapshotCacheKey, raw, snapshotCacheTTL).Err(); err != nil {
				log.Printf("assistant: snapshot cache write failed: %v", err)
			}
		}
	}
	return snap
}
