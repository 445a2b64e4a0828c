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

// LoadGroups reads the persisted group list. A malformed payload leaves the
// registry empty.
func (s *Store) LoadGroups() error {
	raw, ok, err := s.kv.Get(groupsKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.groups = nil
		return err
	}
	if !ok {
		s.groups = nil
		return nil
	}

	var parsed []domain.RepoGroup
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.groups = nil
		return fmt.Errorf("failed to parse group list: %w", err)
	}
	s.groups = parsed

	logger.Log("loaded %d groups", len(parsed))
	return nil
}

// AddGroup creates a group with an empty membership. Names are unique
// case-insensitively.
func (s *Store) AddGroup(name string) (domain.RepoGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.RepoGroup{}, errors.New("group name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if strings.EqualFold(g.Name, name) {
			return domain.RepoGroup{}, fmt.Errorf("group %q already exists", name)
		}
	}

	group := domain.RepoGroup{
		ID:      uuid.NewString(),
		Name:    name,
		RepoIDs: []string{},
	}
	s.groups = append(s.groups, group)

	logger.Log("added group %q", name)
	return group, s.persistGroupsLocked()
}

// DeleteGroup removes a group; its member repositories become ungrouped.
// Deleting an unknown ID is a no-op.
func (s *Store) DeleteGroup(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := s.groups[:0]
	for _, g := range s.groups {
		if g.ID != id {
			groups = append(groups, g)
		}
	}
	s.groups = groups

	return s.persistGroupsLocked()
}

// AddRepoToGroup appends repoID to the target group's membership, removing
// it from every other group first so a repository belongs to at most one
// group. Missing group or existing membership is a no-op.
func (s *Store) AddRepoToGroup(groupID, repoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *domain.RepoGroup
	for i := range s.groups {
		if s.groups[i].ID == groupID {
			target = &s.groups[i]
			break
		}
	}
	if target == nil || target.Contains(repoID) {
		return nil
	}

	for i := range s.groups {
		if s.groups[i].ID != groupID {
			s.groups[i].RepoIDs = removeID(s.groups[i].RepoIDs, repoID)
		}
	}
	target.RepoIDs = append(target.RepoIDs, repoID)

	return s.persistGroupsLocked()
}

// RemoveRepoFromGroup drops repoID from the group's membership if present.
func (s *Store) RemoveRepoFromGroup(groupID, repoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.groups {
		if s.groups[i].ID == groupID {
			s.groups[i].RepoIDs = removeID(s.groups[i].RepoIDs, repoID)
			return s.persistGroupsLocked()
		}
	}
	return nil
}

// RepoGroupID resolves the group a repository belongs to, if any.
func (s *Store) RepoGroupID(repoID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.groups {
		if g.Contains(repoID) {
			return g.ID, true
		}
	}
	return "", false
}

func removeID(ids []string, repoID string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != repoID {
			out = append(out, id)
		}
	}
	return out
}

func (s *Store) persistGroupsLocked() error {
	data, err := json.Marshal(s.groups)
	if err != nil {
		return fmt.Errorf("failed to marshal group list: %w", err)
	}
	if err := s.kv.Set(groupsKey, string(data)); err != nil {
		logger.LogError("SAVE_GROUPS", groupsKey, err)
		return err
	}
	return nil
}
