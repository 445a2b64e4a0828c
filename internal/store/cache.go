package store

import (
	"encoding/json"
	"time"

	"github.com/jmalmgren/repodeck/internal/domain"
	"github.com/jmalmgren/repodeck/internal/logger"
)

const cacheSchemaVersion = 1

// cacheSnapshot is the persisted shape of an aggregation result. Timestamp
// is unix milliseconds at capture time.
type cacheSnapshot struct {
	Version   int                 `json:"version"`
	Timestamp int64               `json:"timestamp"`
	Data      []domain.Repository `json:"data"`
}

type cacheStatus struct {
	ok    bool
	stale bool
}

// loadCache installs the cached repository list into the store. A missing
// snapshot reports {ok:false, stale:true}; a malformed one (bad JSON, wrong
// schema version, missing timestamp or data) is removed and reported the
// same way. loadCache never fails hard.
func (s *Store) loadCache() cacheStatus {
	absent := cacheStatus{ok: false, stale: true}

	raw, ok, err := s.kv.Get(cacheKey)
	if err != nil {
		logger.LogError("CACHE_LOAD", cacheKey, err)
		return absent
	}
	if !ok {
		logger.Log("no cached repositories found")
		return absent
	}

	snap, valid := parseSnapshot(raw)
	if !valid {
		logger.Log("cached repositories malformed, removing")
		s.clearCache()
		return absent
	}

	s.mu.Lock()
	s.repositories = snap.Data
	s.lastError = ""
	s.mu.Unlock()

	stale := s.now().Sub(time.UnixMilli(snap.Timestamp)) > s.expiry
	logger.Log("repositories loaded from cache (stale=%v)", stale)
	return cacheStatus{ok: true, stale: stale}
}

// cacheFresh reports whether a valid snapshot exists and is younger than the
// expiry, without touching in-memory state.
func (s *Store) cacheFresh() bool {
	raw, ok, err := s.kv.Get(cacheKey)
	if err != nil || !ok {
		return false
	}
	snap, valid := parseSnapshot(raw)
	if !valid {
		return false
	}
	return s.now().Sub(time.UnixMilli(snap.Timestamp)) < s.expiry
}

func (s *Store) saveCache(repos []domain.Repository) error {
	if repos == nil {
		repos = []domain.Repository{}
	}
	snap := cacheSnapshot{
		Version:   cacheSchemaVersion,
		Timestamp: s.now().UnixMilli(),
		Data:      repos,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.kv.Set(cacheKey, string(data))
}

func (s *Store) clearCache() {
	if err := s.kv.Remove(cacheKey); err != nil {
		logger.LogError("CACHE_CLEAR", cacheKey, err)
	}
}

func parseSnapshot(raw string) (cacheSnapshot, bool) {
	var snap cacheSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return cacheSnapshot{}, false
	}
	if snap.Version != cacheSchemaVersion || snap.Timestamp <= 0 || snap.Data == nil {
		return cacheSnapshot{}, false
	}
	return snap, true
}
