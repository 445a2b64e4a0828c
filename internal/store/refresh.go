package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmalmgren/repodeck/internal/domain"
	"github.com/jmalmgren/repodeck/internal/logger"
	"github.com/jmalmgren/repodeck/internal/provider/common"
)

type RefreshOptions struct {
	// Force skips the fresh-cache short circuit.
	Force bool

	// Background suppresses the user-visible loading flag.
	Background bool
}

// Refresh aggregates repositories from every configured token. Concurrent
// callers share a single in-flight aggregation. Refresh never fails hard:
// every outcome, including total failure, lands in the error field.
func (s *Store) Refresh(ctx context.Context, opts RefreshOptions) {
	s.refreshes.Do("refresh", func() (interface{}, error) {
		s.refresh(ctx, opts)
		return nil, nil
	})
}

func (s *Store) refresh(ctx context.Context, opts RefreshOptions) {
	s.mu.RLock()
	tokens := make([]domain.PlatformToken, len(s.tokens))
	copy(tokens, s.tokens)
	haveRepos := len(s.repositories) > 0
	s.mu.RUnlock()

	if len(tokens) == 0 {
		s.mu.Lock()
		s.lastError = "no platform tokens configured"
		s.repositories = nil
		s.mu.Unlock()
		s.clearCache()
		return
	}

	// In-memory repositories are trusted to mirror the snapshot, so a fresh
	// snapshot means no network calls are needed.
	if !opts.Force && haveRepos && s.cacheFresh() {
		logger.Log("refresh skipped: repositories mirror a fresh cache")
		return
	}

	if !opts.Background {
		s.setLoading(true)
	}
	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()

	var all []domain.Repository
	var errs []string

	for _, token := range tokens {
		source, ok := s.sources[token.Platform]
		if !ok {
			errs = append(errs, fmt.Sprintf("unsupported platform %s for token %s", token.Platform, token.Label()))
			continue
		}
		if token.Token == "" {
			errs = append(errs, fmt.Sprintf("token for %s (%s) is empty", token.Platform, token.Label()))
			continue
		}

		repos, err := fetchFromSource(ctx, source, token.Token, s.timeout)
		if err != nil {
			logger.LogError("FETCH_REPOS", string(token.Platform), err)
			errs = append(errs, fetchErrorLine(token, err))
			continue
		}

		for i := range repos {
			repos[i].Source = token.Platform
			repos[i].TokenID = token.ID
		}
		all = append(all, repos...)
	}

	s.mu.Lock()
	s.repositories = all
	if len(errs) > 0 {
		s.lastError = strings.Join(errs, " | ")
	}
	tokensRemain := len(s.tokens) > 0
	s.mu.Unlock()

	if len(all) > 0 || tokensRemain {
		if err := s.saveCache(all); err != nil {
			logger.LogError("CACHE_SAVE", cacheKey, err)
			s.appendError("failed to cache results")
		}
	} else {
		// Every token was deleted while the aggregation ran.
		s.clearCache()
	}

	if !opts.Background {
		s.setLoading(false)
	}

	logger.Log("refresh complete: %d repositories, %d errors", len(all), len(errs))
}

// fetchFromSource bounds one adapter call with a timeout and downgrades a
// panicking adapter to an error so it cannot abort the aggregation of the
// remaining tokens.
func fetchFromSource(ctx context.Context, source domain.Source, token string, timeout time.Duration) (repos []domain.Repository, err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source panicked: %v", r)
		}
	}()
	return source.ListRepositories(ctx, token)
}

func fetchErrorLine(token domain.PlatformToken, err error) string {
	line := fmt.Sprintf("error fetching from %s", token.Platform)
	if token.Name != "" {
		line += fmt.Sprintf(" (token %s)", token.Name)
	}
	if apiErr, ok := common.AsAPIError(err); ok {
		return line + ": " + apiErr.Message
	}
	return line + ": an unexpected error occurred"
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.isLoading = v
	s.mu.Unlock()
}

func (s *Store) appendError(msg string) {
	s.mu.Lock()
	if s.lastError != "" {
		s.lastError += " | " + msg
	} else {
		s.lastError = msg
	}
	s.mu.Unlock()
}
