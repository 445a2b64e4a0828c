package gitlab

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmalmgren/repodeck/internal/domain"
	"github.com/jmalmgren/repodeck/internal/provider/common"
)

func TestListRepositoriesMapsProjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer glpat-123" {
			t.Errorf("Expected bearer auth, got %q", got)
		}
		if r.URL.Query().Get("owned") != "true" {
			t.Errorf("Expected owned=true, got %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 42, "name": "proj", "web_url": "https://gitlab.com/me/proj", "description": "a project", "namespace": {"path": "me"}},
			{"id": 43, "name": "other", "web_url": "https://gitlab.com/me/other", "description": null, "namespace": {"path": "me"}}
		]`))
	}))
	defer server.Close()

	source := NewSourceWithBaseURL(server.URL, server.Client())
	repos, err := source.ListRepositories(context.Background(), "glpat-123")
	if err != nil {
		t.Fatalf("ListRepositories() error = %v", err)
	}

	if len(repos) != 2 {
		t.Fatalf("Expected 2 repositories, got %d", len(repos))
	}
	want := domain.Repository{
		ID:          "42",
		Name:        "proj",
		URL:         "https://gitlab.com/me/proj",
		Description: "a project",
		Owner:       "me",
		Source:      domain.PlatformGitLab,
	}
	if repos[0] != want {
		t.Errorf("Unexpected mapping:\n got %+v\nwant %+v", repos[0], want)
	}
	if repos[1].Description != "" {
		t.Errorf("Null description should map to empty, got %q", repos[1].Description)
	}
}

func TestListRepositoriesUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	source := NewSourceWithBaseURL(server.URL, server.Client())
	_, err := source.ListRepositories(context.Background(), "bad")
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}

	apiErr, ok := common.AsAPIError(err)
	if !ok {
		t.Fatalf("Expected *common.APIError, got %T", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", apiErr.Status)
	}
}

func TestListRepositoriesMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"}`))
	}))
	defer server.Close()

	source := NewSourceWithBaseURL(server.URL, server.Client())
	_, err := source.ListRepositories(context.Background(), "tok")
	if err == nil {
		t.Fatal("Expected error for malformed body")
	}
	if _, ok := common.AsAPIError(err); !ok {
		t.Errorf("Expected classified error, got %T", err)
	}
}
