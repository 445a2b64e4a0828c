package github

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/go-github/v57/github"

	"github.com/jmalmgren/repodeck/internal/domain"
	"github.com/jmalmgren/repodeck/internal/logger"
	"github.com/jmalmgren/repodeck/internal/provider/common"
)

type Source struct{}

func NewSource() *Source {
	return &Source{}
}

func (*Source) Platform() domain.Platform {
	return domain.PlatformGitHub
}

func (s *Source) ListRepositories(ctx context.Context, token string) ([]domain.Repository, error) {
	logger.Log("GitHub: listing repositories")

	client := NewClient(ctx, token)
	ghRepos, err := client.ListOwnRepositories(ctx)
	if err != nil {
		logger.LogError("GITHUB_LIST_REPOS", "", err)
		return nil, classify(err)
	}

	repos := make([]domain.Repository, 0, len(ghRepos))
	for _, ghRepo := range ghRepos {
		repos = append(repos, convertRepository(ghRepo))
	}

	logger.Log("GitHub: found %d repositories", len(repos))
	return repos, nil
}

func convertRepository(ghRepo *github.Repository) domain.Repository {
	repo := domain.Repository{
		ID:          strconv.FormatInt(ghRepo.GetID(), 10),
		Name:        ghRepo.GetName(),
		URL:         ghRepo.GetHTMLURL(),
		Description: ghRepo.GetDescription(),
		Source:      domain.PlatformGitHub,
	}

	if ghRepo.Owner != nil {
		repo.Owner = ghRepo.Owner.GetLogin()
	}

	return repo
}

func classify(err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		if ghErr.Response.StatusCode == http.StatusUnauthorized {
			return common.NewAPIError("unauthorized: invalid GitHub token or insufficient scope", http.StatusUnauthorized)
		}
		return common.NewAPIError("GitHub API request failed: "+ghErr.Response.Status, ghErr.Response.StatusCode)
	}
	return common.NewAPIError("failed to fetch repositories from GitHub", 0)
}
