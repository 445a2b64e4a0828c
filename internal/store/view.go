package store

import (
	"strings"

	"github.com/jmalmgren/repodeck/internal/domain"
)

// RepositoriesByGroup projects the current repository list through the group
// registry and the live search query. Recomputed on every call.
func (s *Store) RepositoriesByGroup() domain.GroupedRepositories {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return projectGroups(s.repositories, s.groups, s.searchQuery)
}

// Project is RepositoriesByGroup with an ad-hoc query instead of the stored
// one.
func (s *Store) Project(query string) domain.GroupedRepositories {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return projectGroups(s.repositories, s.groups, query)
}

// projectGroups partitions repos into named groups plus an ungrouped bucket.
// With a query, a group is emitted when its name matches or at least one
// member matches; each repository appears at most once in the whole output.
// A matching repository whose group was not emitted stays excluded rather
// than leaking into the ungrouped bucket.
func projectGroups(repos []domain.Repository, groups []domain.RepoGroup, query string) domain.GroupedRepositories {
	query = strings.ToLower(strings.TrimSpace(query))

	byID := make(map[string]domain.Repository, len(repos))
	for _, r := range repos {
		byID[r.ID] = r
	}

	inAnyGroup := make(map[string]bool)
	for _, g := range groups {
		for _, id := range g.RepoIDs {
			inAnyGroup[id] = true
		}
	}

	if query == "" {
		grouped := make(map[string][]domain.Repository, len(groups))
		for _, g := range groups {
			members := make([]domain.Repository, 0, len(g.RepoIDs))
			for _, id := range g.RepoIDs {
				// Dangling IDs are silently dropped.
				if r, ok := byID[id]; ok {
					members = append(members, r)
				}
			}
			grouped[g.Name] = members
		}

		ungrouped := make([]domain.Repository, 0)
		for _, r := range repos {
			if !inAnyGroup[r.ID] {
				ungrouped = append(ungrouped, r)
			}
		}
		return domain.GroupedRepositories{Grouped: grouped, Ungrouped: ungrouped}
	}

	grouped := make(map[string][]domain.Repository)
	processed := make(map[string]bool)

	for _, g := range groups {
		nameMatch := strings.Contains(strings.ToLower(g.Name), query)

		var members []domain.Repository
		for _, id := range g.RepoIDs {
			r, ok := byID[id]
			if !ok {
				continue
			}
			if (nameMatch || repoMatches(r, query)) && !processed[r.ID] {
				members = append(members, r)
				processed[r.ID] = true
			}
		}
		if len(members) > 0 {
			grouped[g.Name] = members
		}
	}

	ungrouped := make([]domain.Repository, 0)
	for _, r := range repos {
		if processed[r.ID] || !repoMatches(r, query) {
			continue
		}
		original := originalGroup(groups, r.ID)
		if original == nil || grouped[original.Name] == nil {
			ungrouped = append(ungrouped, r)
			processed[r.ID] = true
		}
	}

	return domain.GroupedRepositories{Grouped: grouped, Ungrouped: ungrouped}
}

func repoMatches(r domain.Repository, query string) bool {
	return strings.Contains(strings.ToLower(r.Name), query) ||
		strings.Contains(strings.ToLower(r.Owner), query) ||
		strings.Contains(strings.ToLower(string(r.Source)), query)
}

func originalGroup(groups []domain.RepoGroup, repoID string) *domain.RepoGroup {
	for i := range groups {
		if groups[i].Contains(repoID) {
			return &groups[i]
		}
	}
	return nil
}
