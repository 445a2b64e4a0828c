// Package store implements the repository aggregation engine: token and
// group registries, the timestamped repository cache, background refresh
// scheduling, and the grouped search projection.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jmalmgren/repodeck/internal/domain"
	"github.com/jmalmgren/repodeck/internal/logger"
	"github.com/jmalmgren/repodeck/internal/storage"
)

const (
	tokensKey = "platformTokens"
	groupsKey = "repositoryGroups"
	cacheKey  = "cachedRepositories"
)

const (
	// DefaultCacheExpiry is how long a cache snapshot counts as fresh.
	DefaultCacheExpiry = time.Hour

	// DefaultRefreshInterval is the period of the background scheduler.
	DefaultRefreshInterval = 30 * time.Minute

	// DefaultSourceTimeout bounds a single adapter call.
	DefaultSourceTimeout = 30 * time.Second
)

type Options struct {
	KV      storage.KV
	Sources map[domain.Platform]domain.Source

	// Zero values fall back to the package defaults.
	CacheExpiry     time.Duration
	RefreshInterval time.Duration
	SourceTimeout   time.Duration

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Store is the aggregate root. All state lives behind its mutex; a Store is
// safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	kv      storage.KV
	sources map[domain.Platform]domain.Source
	expiry  time.Duration
	timeout time.Duration
	now     func() time.Time

	scheduler *Scheduler
	refreshes singleflight.Group

	tokens       []domain.PlatformToken
	repositories []domain.Repository
	groups       []domain.RepoGroup
	isLoading    bool
	lastError    string
	searchQuery  string
}

func New(opts Options) *Store {
	if opts.CacheExpiry == 0 {
		opts.CacheExpiry = DefaultCacheExpiry
	}
	if opts.RefreshInterval == 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.SourceTimeout == 0 {
		opts.SourceTimeout = DefaultSourceTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		kv:      opts.KV,
		sources: opts.Sources,
		expiry:  opts.CacheExpiry,
		timeout: opts.SourceTimeout,
		now:     opts.Now,
	}
	s.scheduler = NewScheduler(opts.RefreshInterval, s.tick)
	return s
}

// Initialize loads persisted tokens and groups, installs the cache snapshot,
// triggers a background refresh when the snapshot is absent or stale, and
// starts the scheduler when tokens exist.
func (s *Store) Initialize(ctx context.Context) {
	if err := s.LoadTokens(); err != nil {
		logger.LogError("LOAD_TOKENS", tokensKey, err)
	}
	if err := s.LoadGroups(); err != nil {
		logger.LogError("LOAD_GROUPS", groupsKey, err)
	}

	if !s.IsAuthenticated() {
		logger.Log("initialization: no tokens configured, skipping cache load")
		return
	}

	status := s.loadCache()
	if !status.ok || status.stale {
		reason := "absent cache"
		if status.ok {
			reason = "stale cache"
		}
		logger.Log("initialization: background refresh due to %s", reason)
		s.Refresh(ctx, RefreshOptions{Force: true, Background: true})
	}

	s.scheduler.Start()
}

// Close stops the background scheduler.
func (s *Store) Close() {
	s.scheduler.Stop()
}

// tick runs on every scheduler period. Ticks never toggle the loading flag.
func (s *Store) tick() {
	if !s.IsAuthenticated() {
		s.scheduler.Stop()
		return
	}
	logger.Log("periodic refresh triggered")
	s.Refresh(context.Background(), RefreshOptions{Background: true})
}

func (s *Store) Tokens() []domain.PlatformToken {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tokens := make([]domain.PlatformToken, len(s.tokens))
	copy(tokens, s.tokens)
	return tokens
}

func (s *Store) Repositories() []domain.Repository {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repos := make([]domain.Repository, len(s.repositories))
	copy(repos, s.repositories)
	return repos
}

func (s *Store) Groups() []domain.RepoGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]domain.RepoGroup, len(s.groups))
	for i, g := range s.groups {
		groups[i] = g
		groups[i].RepoIDs = append([]string(nil), g.RepoIDs...)
	}
	return groups
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}

// LastError returns the aggregated error message of the most recent
// operation, empty when the last operation fully succeeded.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// IsAuthenticated reports whether at least one platform token is configured.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens) > 0
}

func (s *Store) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery
}

func (s *Store) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = strings.TrimSpace(query)
}
