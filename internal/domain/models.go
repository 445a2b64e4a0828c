package domain

type Platform string

const (
	PlatformGitHub    Platform = "GitHub"
	PlatformGitLab    Platform = "GitLab"
	PlatformBitbucket Platform = "Bitbucket"
)

// KnownPlatform reports whether p is one of the supported hosting platforms.
func KnownPlatform(p Platform) bool {
	switch p {
	case PlatformGitHub, PlatformGitLab, PlatformBitbucket:
		return true
	}
	return false
}

// PlatformToken is a stored credential for one hosting platform.
type PlatformToken struct {
	ID       string   `json:"id"`
	Platform Platform `json:"platform"`
	Token    string   `json:"token"`
	Name     string   `json:"name,omitempty"`
}

// Label returns the user-facing name of the token, falling back to its ID.
func (t PlatformToken) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// Repository is one repository as reported by a platform. Repositories are
// rebuilt wholesale on every aggregation and never mutated individually.
type Repository struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Description string   `json:"description,omitempty"`
	Owner       string   `json:"owner"`
	Source      Platform `json:"source"`
	TokenID     string   `json:"tokenId,omitempty"`
}

// RepoGroup is a user-named bucket of repository IDs. A repository ID belongs
// to at most one group across the whole registry.
type RepoGroup struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	RepoIDs []string `json:"repoIds"`
}

func (g RepoGroup) Contains(repoID string) bool {
	for _, id := range g.RepoIDs {
		if id == repoID {
			return true
		}
	}
	return false
}

// GroupedRepositories is the search-filtered partition of the repository list
// into named groups plus the ungrouped remainder.
type GroupedRepositories struct {
	Grouped   map[string][]Repository `json:"grouped"`
	Ungrouped []Repository            `json:"ungrouped"`
}
