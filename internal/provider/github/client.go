package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

const pageSize = 100

type Client struct {
	client *github.Client
}

func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{client: github.NewClient(tc)}
}

// ListOwnRepositories fetches a single page of the authenticated user's own
// repositories, most recently updated first.
func (c *Client) ListOwnRepositories(ctx context.Context) ([]*github.Repository, error) {
	opts := &github.RepositoryListOptions{
		Type:        "owner",
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	repos, _, err := c.client.Repositories.List(ctx, "", opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	return repos, nil
}
