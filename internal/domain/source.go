package domain

import "context"

// Source fetches the repositories a token can see on one hosting platform.
// Implementations are stateless; failures are reported as *common.APIError
// where the platform returned a classified HTTP failure.
type Source interface {
	Platform() Platform

	ListRepositories(ctx context.Context, token string) ([]Repository, error)
}
