package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jmalmgren/repodeck/internal/domain"
	"github.com/jmalmgren/repodeck/internal/logger"
	"github.com/jmalmgren/repodeck/internal/provider/common"
)

const defaultBaseURL = "https://gitlab.com/api/v4"

const pageSize = 100

type project struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	WebURL      string  `json:"web_url"`
	Description *string `json:"description"`
	Namespace   struct {
		Path string `json:"path"`
	} `json:"namespace"`
}

type Source struct {
	baseURL string
	client  *http.Client
}

func NewSource() *Source {
	return &Source{baseURL: defaultBaseURL}
}

// NewSourceWithBaseURL points the adapter at a non-default API root, for
// self-hosted instances and tests.
func NewSourceWithBaseURL(baseURL string, client *http.Client) *Source {
	return &Source{baseURL: baseURL, client: client}
}

func (*Source) Platform() domain.Platform {
	return domain.PlatformGitLab
}

func (s *Source) ListRepositories(ctx context.Context, token string) ([]domain.Repository, error) {
	logger.Log("GitLab: listing projects")

	url := fmt.Sprintf("%s/projects?owned=true&simple=true&per_page=%d", s.baseURL, pageSize)
	header := http.Header{
		"Authorization": []string{"Bearer " + token},
	}

	var projects []project
	if err := common.GetJSON(ctx, s.client, url, header, &projects); err != nil {
		logger.LogError("GITLAB_LIST_PROJECTS", "", err)
		return nil, classify(err)
	}

	repos := make([]domain.Repository, 0, len(projects))
	for _, p := range projects {
		repos = append(repos, domain.Repository{
			ID:          strconv.Itoa(p.ID),
			Name:        p.Name,
			URL:         p.WebURL,
			Description: common.GetString(p.Description),
			Owner:       p.Namespace.Path,
			Source:      domain.PlatformGitLab,
		})
	}

	logger.Log("GitLab: found %d projects", len(repos))
	return repos, nil
}

func classify(err error) error {
	if apiErr, ok := common.AsAPIError(err); ok {
		if apiErr.Status == http.StatusUnauthorized {
			return common.NewAPIError("unauthorized: invalid GitLab token", http.StatusUnauthorized)
		}
		return common.NewAPIError("GitLab API request failed: "+apiErr.Message, apiErr.Status)
	}
	return common.NewAPIError("failed to fetch repositories from GitLab", 0)
}
