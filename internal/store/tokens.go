package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jmalmgren/repodeck/internal/domain"
	"github.com/jmalmgren/repodeck/internal/logger"
)

// LoadTokens reads the persisted token list. Entries missing an id, platform
// or token string are dropped. A malformed payload leaves the registry empty
// and surfaces through the error field.
func (s *Store) LoadTokens() error {
	raw, ok, err := s.kv.Get(tokensKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.tokens = nil
		s.lastError = "could not load token configuration"
		return err
	}
	if !ok {
		s.tokens = nil
		return nil
	}

	var parsed []domain.PlatformToken
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.tokens = nil
		s.lastError = "could not load token configuration"
		return fmt.Errorf("failed to parse token list: %w", err)
	}

	tokens := make([]domain.PlatformToken, 0, len(parsed))
	for _, t := range parsed {
		if t.ID == "" || t.Platform == "" || t.Token == "" {
			logger.Log("dropping invalid persisted token (id=%q platform=%q)", t.ID, t.Platform)
			continue
		}
		tokens = append(tokens, t)
	}
	s.tokens = tokens

	logger.Log("loaded %d tokens", len(tokens))
	return nil
}

// SaveToken upserts a token by ID. A new token without an ID gets one
// assigned. Saving the first token starts the refresh scheduler.
func (s *Store) SaveToken(token domain.PlatformToken) error {
	if strings.TrimSpace(token.Token) == "" {
		return errors.New("token cannot be empty")
	}
	if token.Platform == "" {
		return errors.New("platform must be selected")
	}
	if !domain.KnownPlatform(token.Platform) {
		return fmt.Errorf("unsupported platform: %s", token.Platform)
	}

	s.mu.Lock()
	wasEmpty := len(s.tokens) == 0

	if token.ID == "" {
		token.ID = uuid.NewString()
	}

	for _, t := range s.tokens {
		if t.ID != token.ID && t.Platform == token.Platform && t.Token == token.Token {
			s.mu.Unlock()
			return fmt.Errorf("a token for %s with the same value already exists", token.Platform)
		}
	}

	found := false
	for i, t := range s.tokens {
		if t.ID == token.ID {
			s.tokens[i] = token
			found = true
			logger.Log("updating token %s (platform %s)", token.Label(), token.Platform)
			break
		}
	}
	if !found {
		s.tokens = append(s.tokens, token)
		logger.Log("adding token %s (platform %s)", token.Label(), token.Platform)
	}

	err := s.persistTokensLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if wasEmpty {
		s.scheduler.Start()
	}
	return nil
}

// DeleteToken removes a token by ID. Deleting the last token stops the
// scheduler and clears the cache snapshot.
func (s *Store) DeleteToken(id string) error {
	s.mu.Lock()

	idx := -1
	for i, t := range s.tokens {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return fmt.Errorf("token not found: %s", id)
	}

	logger.Log("deleting token %s (platform %s)", s.tokens[idx].Label(), s.tokens[idx].Platform)
	s.tokens = append(s.tokens[:idx], s.tokens[idx+1:]...)

	err := s.persistTokensLocked()
	empty := len(s.tokens) == 0
	s.mu.Unlock()

	if empty {
		s.scheduler.Stop()
		s.clearCache()
	}
	return err
}

func (s *Store) persistTokensLocked() error {
	data, err := json.Marshal(s.tokens)
	if err != nil {
		return fmt.Errorf("failed to marshal token list: %w", err)
	}
	if err := s.kv.Set(tokensKey, string(data)); err != nil {
		logger.LogError("SAVE_TOKENS", tokensKey, err)
		return err
	}
	return nil
}
