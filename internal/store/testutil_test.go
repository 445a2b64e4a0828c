package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/jmalmgren/repodeck/internal/domain"
	"github.com/jmalmgren/repodeck/internal/storage"
)

// fakeSource is a scriptable adapter that counts its invocations.
type fakeSource struct {
	mu       sync.Mutex
	platform domain.Platform
	repos    []domain.Repository
	err      error
	calls    int
}

func (f *fakeSource) Platform() domain.Platform {
	return f.platform
}

func (f *fakeSource) ListRepositories(_ context.Context, _ string) ([]domain.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	repos := make([]domain.Repository, len(f.repos))
	copy(repos, f.repos)
	return repos, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestStore(t *testing.T, sources ...*fakeSource) (*Store, *storage.Memory) {
	t.Helper()

	m := map[domain.Platform]domain.Source{}
	for _, src := range sources {
		m[src.platform] = src
	}

	kv := storage.NewMemory()
	s := New(Options{
		KV:      kv,
		Sources: m,
	})
	t.Cleanup(s.Close)
	return s, kv
}

func seedSnapshot(t *testing.T, kv storage.KV, age time.Duration, repos []domain.Repository) {
	t.Helper()

	if repos == nil {
		repos = []domain.Repository{}
	}
	snap := cacheSnapshot{
		Version:   cacheSchemaVersion,
		Timestamp: time.Now().Add(-age).UnixMilli(),
		Data:      repos,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Failed to marshal snapshot: %v", err)
	}
	if err := kv.Set(cacheKey, string(data)); err != nil {
		t.Fatalf("Failed to seed snapshot: %v", err)
	}
}

func githubToken(id, value string) domain.PlatformToken {
	return domain.PlatformToken{ID: id, Platform: domain.PlatformGitHub, Token: value}
}

func repo(id, name, owner string, source domain.Platform) domain.Repository {
	return domain.Repository{ID: id, Name: name, Owner: owner, Source: source, URL: "#"}
}
