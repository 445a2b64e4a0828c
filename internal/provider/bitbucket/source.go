package bitbucket

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmalmgren/repodeck/internal/domain"
	"github.com/jmalmgren/repodeck/internal/logger"
	"github.com/jmalmgren/repodeck/internal/provider/common"
)

const defaultBaseURL = "https://api.bitbucket.org/2.0"

const pageSize = 100

type repository struct {
	UUID        string  `json:"uuid"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Links       struct {
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
	} `json:"links"`
	Workspace struct {
		Slug string `json:"slug"`
	} `json:"workspace"`
}

type listResponse struct {
	Values []repository `json:"values"`
}

type Source struct {
	baseURL string
	client  *http.Client
}

func NewSource() *Source {
	return &Source{baseURL: defaultBaseURL}
}

func NewSourceWithBaseURL(baseURL string, client *http.Client) *Source {
	return &Source{baseURL: baseURL, client: client}
}

func (*Source) Platform() domain.Platform {
	return domain.PlatformBitbucket
}

// ListRepositories expects token in "username:app_password" form, the way
// Bitbucket Cloud app passwords are used with basic auth.
func (s *Source) ListRepositories(ctx context.Context, token string) ([]domain.Repository, error) {
	username, _, ok := strings.Cut(token, ":")
	if !ok || username == "" {
		return nil, common.NewAPIError(`Bitbucket token must be in "username:app_password" form`, 0)
	}

	logger.Log("Bitbucket: listing repositories for %s", username)

	url := fmt.Sprintf("%s/repositories/%s?role=owner&pagelen=%d", s.baseURL, username, pageSize)
	header := http.Header{
		"Authorization": []string{"Basic " + base64.StdEncoding.EncodeToString([]byte(token))},
	}

	var result listResponse
	if err := common.GetJSON(ctx, s.client, url, header, &result); err != nil {
		logger.LogError("BITBUCKET_LIST_REPOS", username, err)
		return nil, classify(err)
	}

	repos := make([]domain.Repository, 0, len(result.Values))
	for _, r := range result.Values {
		owner := r.Workspace.Slug
		if owner == "" {
			owner = username
		}
		repos = append(repos, domain.Repository{
			ID:          r.UUID,
			Name:        r.Name,
			URL:         r.Links.HTML.Href,
			Description: common.GetString(r.Description),
			Owner:       owner,
			Source:      domain.PlatformBitbucket,
		})
	}

	logger.Log("Bitbucket: found %d repositories", len(repos))
	return repos, nil
}

func classify(err error) error {
	if apiErr, ok := common.AsAPIError(err); ok {
		if apiErr.Status == http.StatusUnauthorized {
			return common.NewAPIError("unauthorized: invalid Bitbucket credentials", http.StatusUnauthorized)
		}
		return common.NewAPIError("Bitbucket API request failed: "+apiErr.Message, apiErr.Status)
	}
	return common.NewAPIError("failed to fetch repositories from Bitbucket", 0)
}
