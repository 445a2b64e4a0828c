package store

import (
	"testing"

	"github.com/jmalmgren/repodeck/internal/domain"
)

func setupProjection(t *testing.T) *Store {
	t.Helper()

	s, _ := newTestStore(t)
	s.mu.Lock()
	s.repositories = []domain.Repository{
		repo("1", "alpha", "alice", domain.PlatformGitHub),
		repo("2", "beta", "bob", domain.PlatformGitLab),
		repo("3", "gamma", "carol", domain.PlatformBitbucket),
	}
	s.mu.Unlock()

	g1, err := s.AddGroup("G1")
	if err != nil {
		t.Fatalf("Failed to add group: %v", err)
	}
	g2, err := s.AddGroup("G2")
	if err != nil {
		t.Fatalf("Failed to add group: %v", err)
	}
	if err := s.AddRepoToGroup(g1.ID, "1"); err != nil {
		t.Fatalf("Failed to assign repo: %v", err)
	}
	if err := s.AddRepoToGroup(g2.ID, "2"); err != nil {
		t.Fatalf("Failed to assign repo: %v", err)
	}
	return s
}

func TestProjectionEmptySearch(t *testing.T) {
	s := setupProjection(t)

	view := s.RepositoriesByGroup()

	if len(view.Grouped["G1"]) != 1 || view.Grouped["G1"][0].ID != "1" {
		t.Errorf("Expected G1=[repo1], got %+v", view.Grouped["G1"])
	}
	if len(view.Grouped["G2"]) != 1 || view.Grouped["G2"][0].ID != "2" {
		t.Errorf("Expected G2=[repo2], got %+v", view.Grouped["G2"])
	}
	if len(view.Ungrouped) != 1 || view.Ungrouped[0].ID != "3" {
		t.Errorf("Expected ungrouped=[repo3], got %+v", view.Ungrouped)
	}
}

func TestProjectionCompleteness(t *testing.T) {
	s := setupProjection(t)

	view := s.RepositoriesByGroup()

	seen := map[string]int{}
	for _, members := range view.Grouped {
		for _, r := range members {
			seen[r.ID]++
		}
	}
	for _, r := range view.Ungrouped {
		seen[r.ID]++
	}

	for _, want := range []string{"1", "2", "3"} {
		if seen[want] != 1 {
			t.Errorf("Repo %s should appear exactly once, appeared %d times", want, seen[want])
		}
	}
	if len(seen) != 3 {
		t.Errorf("Projection with empty search must cover the full list, got %v", seen)
	}
}

func TestProjectionGroupNameMatch(t *testing.T) {
	s := setupProjection(t)
	s.SetSearchQuery("G1")

	view := s.RepositoriesByGroup()

	// A group-name match pulls in its members even without a repo match.
	if len(view.Grouped) != 1 {
		t.Fatalf("Expected only G1 in output, got %v", view.Grouped)
	}
	if len(view.Grouped["G1"]) != 1 || view.Grouped["G1"][0].ID != "1" {
		t.Errorf("Expected G1=[repo1], got %+v", view.Grouped["G1"])
	}

	// repo2 matched nothing and its group did not qualify, so it is
	// excluded rather than moved to ungrouped.
	if len(view.Ungrouped) != 0 {
		t.Errorf("Expected empty ungrouped, got %+v", view.Ungrouped)
	}
}

func TestProjectionRepoMatchInsideGroup(t *testing.T) {
	s := setupProjection(t)
	s.SetSearchQuery("beta")

	view := s.RepositoriesByGroup()

	if len(view.Grouped["G2"]) != 1 || view.Grouped["G2"][0].ID != "2" {
		t.Errorf("Expected repo match to emit its group, got %+v", view.Grouped)
	}
	if _, ok := view.Grouped["G1"]; ok {
		t.Error("G1 has no matches and must not be emitted")
	}
	if len(view.Ungrouped) != 0 {
		t.Errorf("Expected empty ungrouped, got %+v", view.Ungrouped)
	}
}

func TestProjectionUngroupedMatch(t *testing.T) {
	s := setupProjection(t)
	s.SetSearchQuery("gamma")

	view := s.RepositoriesByGroup()

	if len(view.Grouped) != 0 {
		t.Errorf("Expected no groups, got %v", view.Grouped)
	}
	if len(view.Ungrouped) != 1 || view.Ungrouped[0].ID != "3" {
		t.Errorf("Expected ungrouped=[repo3], got %+v", view.Ungrouped)
	}
}

func TestProjectionMatchesOwnerAndSource(t *testing.T) {
	s := setupProjection(t)

	tests := []struct {
		query  string
		repoID string
	}{
		{"alice", "1"},   // owner
		{"gitlab", "2"},  // source platform
		{"CAROL", "3"},   // case-insensitive
	}

	for _, tt := range tests {
		view := s.Project(tt.query)

		found := false
		for _, members := range view.Grouped {
			for _, r := range members {
				if r.ID == tt.repoID {
					found = true
				}
			}
		}
		for _, r := range view.Ungrouped {
			if r.ID == tt.repoID {
				found = true
			}
		}
		if !found {
			t.Errorf("Query %q should match repo %s", tt.query, tt.repoID)
		}
	}
}

func TestProjectionNoDuplicatesUnderSearch(t *testing.T) {
	s, _ := newTestStore(t)
	s.mu.Lock()
	s.repositories = []domain.Repository{
		repo("1", "shared", "alice", domain.PlatformGitHub),
	}
	s.mu.Unlock()

	// Both group names match the query; the repo must only surface once,
	// under the first group in registry order.
	g1, err := s.AddGroup("team alpha")
	if err != nil {
		t.Fatalf("Failed to add group: %v", err)
	}
	if _, err := s.AddGroup("team beta"); err != nil {
		t.Fatalf("Failed to add group: %v", err)
	}
	if err := s.AddRepoToGroup(g1.ID, "1"); err != nil {
		t.Fatalf("Failed to assign repo: %v", err)
	}

	view := s.Project("team")

	total := len(view.Ungrouped)
	for _, members := range view.Grouped {
		total += len(members)
	}
	if total != 1 {
		t.Errorf("Repo must appear at most once across the projection, got %d occurrences", total)
	}
	if len(view.Grouped["team alpha"]) != 1 {
		t.Errorf("Expected repo under its own group, got %v", view.Grouped)
	}
}

func TestProjectionDropsDanglingIDs(t *testing.T) {
	s, _ := newTestStore(t)
	s.mu.Lock()
	s.repositories = []domain.Repository{
		repo("1", "alpha", "alice", domain.PlatformGitHub),
	}
	s.mu.Unlock()

	g, err := s.AddGroup("G1")
	if err != nil {
		t.Fatalf("Failed to add group: %v", err)
	}
	if err := s.AddRepoToGroup(g.ID, "1"); err != nil {
		t.Fatalf("Failed to assign repo: %v", err)
	}
	if err := s.AddRepoToGroup(g.ID, "gone"); err != nil {
		t.Fatalf("Failed to assign repo: %v", err)
	}

	view := s.RepositoriesByGroup()
	if len(view.Grouped["G1"]) != 1 {
		t.Errorf("Dangling membership ids must be dropped, got %+v", view.Grouped["G1"])
	}
}

func TestProjectionEmptyGroupsIncludedWithoutSearch(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.AddGroup("Empty"); err != nil {
		t.Fatalf("Failed to add group: %v", err)
	}

	view := s.RepositoriesByGroup()
	members, ok := view.Grouped["Empty"]
	if !ok {
		t.Fatal("Empty groups appear in the projection when search is empty")
	}
	if len(members) != 0 {
		t.Errorf("Expected empty membership, got %+v", members)
	}
}

func TestSetSearchQueryTrims(t *testing.T) {
	s, _ := newTestStore(t)

	s.SetSearchQuery("  hello  ")
	if s.SearchQuery() != "hello" {
		t.Errorf("Expected trimmed query, got %q", s.SearchQuery())
	}
}
