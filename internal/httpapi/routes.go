package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jmalmgren/repodeck/internal/domain"
	"github.com/jmalmgren/repodeck/internal/logger"
	"github.com/jmalmgren/repodeck/internal/store"
)

// StateResponse is a snapshot of the engine's observable state.
type StateResponse struct {
	IsLoading       bool   `json:"isLoading"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	LastError       string `json:"lastError,omitempty"`
	SearchQuery     string `json:"searchQuery,omitempty"`
	RepositoryCount int    `json:"repositoryCount"`
}

// TokenResponse is a stored token with its secret value stripped.
type TokenResponse struct {
	ID       string          `json:"id"`
	Platform domain.Platform `json:"platform"`
	Name     string          `json:"name,omitempty"`
}

// SaveTokenRequest creates a token, or replaces one when ID is set.
type SaveTokenRequest struct {
	ID       string          `json:"id,omitempty"`
	Platform domain.Platform `json:"platform"`
	Token    string          `json:"token"`
	Name     string          `json:"name,omitempty"`
}

// CreateGroupRequest names a new group.
type CreateGroupRequest struct {
	Name string `json:"name"`
}

// AssignRepoRequest moves a repository into a group.
type AssignRepoRequest struct {
	RepoID string `json:"repoId"`
}

// RefreshRequest controls a manually triggered aggregation.
type RefreshRequest struct {
	Force bool `json:"force"`
}

// SearchRequest sets the persistent search query.
type SearchRequest struct {
	Query string `json:"query"`
}

// ErrorResponse is a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Routes defines the API routes with dependency injection
type Routes struct {
	store *store.Store
}

// NewRoutes creates a new Routes instance over the provided store
func NewRoutes(st *store.Store) *Routes {
	return &Routes{store: st}
}

// Router creates the /api router
func Router(st *store.Store) http.Handler {
	routes := NewRoutes(st)

	r := chi.NewRouter()

	r.Get("/state", routes.getState)
	r.Get("/repositories", routes.getRepositories)
	r.Post("/refresh", routes.postRefresh)
	r.Put("/search", routes.putSearch)

	r.Get("/tokens", routes.getTokens)
	r.Post("/tokens", routes.postToken)
	r.Delete("/tokens/{id}", routes.deleteToken)

	r.Get("/groups", routes.getGroups)
	r.Post("/groups", routes.postGroup)
	r.Delete("/groups/{id}", routes.deleteGroup)
	r.Post("/groups/{id}/repositories", routes.postGroupRepo)
	r.Delete("/groups/{id}/repositories/{repoID}", routes.deleteGroupRepo)

	return r
}

// getState handles GET /api/state
func (rr *Routes) getState(w http.ResponseWriter, _ *http.Request) {
	state := StateResponse{
		IsLoading:       rr.store.IsLoading(),
		IsAuthenticated: rr.store.IsAuthenticated(),
		LastError:       rr.store.LastError(),
		SearchQuery:     rr.store.SearchQuery(),
		RepositoryCount: len(rr.store.Repositories()),
	}
	rr.writeJSONResponse(w, state)
}

// getRepositories handles GET /api/repositories. An explicit q parameter
// projects against that query; otherwise the stored search query applies.
func (rr *Routes) getRepositories(w http.ResponseWriter, r *http.Request) {
	if q, ok := queryParam(r, "q"); ok {
		rr.writeJSONResponse(w, rr.store.Project(q))
		return
	}
	rr.writeJSONResponse(w, rr.store.RepositoriesByGroup())
}

// postRefresh handles POST /api/refresh. The aggregation runs in the
// background; poll /api/state for completion.
func (rr *Routes) postRefresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			rr.writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	go rr.store.Refresh(context.Background(), store.RefreshOptions{Force: req.Force})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"status":"refreshing"}`))
}

// putSearch handles PUT /api/search
func (rr *Routes) putSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rr.writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rr.store.SetSearchQuery(req.Query)
	rr.writeJSONResponse(w, rr.store.RepositoriesByGroup())
}

// getTokens handles GET /api/tokens. Secret values never leave the engine.
func (rr *Routes) getTokens(w http.ResponseWriter, _ *http.Request) {
	tokens := rr.store.Tokens()
	resp := make([]TokenResponse, 0, len(tokens))
	for _, t := range tokens {
		resp = append(resp, TokenResponse{ID: t.ID, Platform: t.Platform, Name: t.Name})
	}
	rr.writeJSONResponse(w, resp)
}

// postToken handles POST /api/tokens
func (rr *Routes) postToken(w http.ResponseWriter, r *http.Request) {
	var req SaveTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rr.writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token := domain.PlatformToken{
		ID:       req.ID,
		Platform: req.Platform,
		Token:    req.Token,
		Name:     req.Name,
	}
	if err := rr.store.SaveToken(token); err != nil {
		rr.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	rr.writeJSONResponse(w, rr.tokenByValue(token))
}

// deleteToken handles DELETE /api/tokens/{id}
func (rr *Routes) deleteToken(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := rr.store.DeleteToken(id); err != nil {
		rr.writeErrorResponse(w, err.Error(), statusForError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getGroups handles GET /api/groups
func (rr *Routes) getGroups(w http.ResponseWriter, _ *http.Request) {
	rr.writeJSONResponse(w, rr.store.Groups())
}

// postGroup handles POST /api/groups
func (rr *Routes) postGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rr.writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	group, err := rr.store.AddGroup(req.Name)
	if err != nil {
		rr.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	rr.writeJSONResponse(w, group)
}

// deleteGroup handles DELETE /api/groups/{id}
func (rr *Routes) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := rr.store.DeleteGroup(chi.URLParam(r, "id")); err != nil {
		logger.LogError("DELETE_GROUP", chi.URLParam(r, "id"), err)
		rr.writeErrorResponse(w, "failed to delete group", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// postGroupRepo handles POST /api/groups/{id}/repositories
func (rr *Routes) postGroupRepo(w http.ResponseWriter, r *http.Request) {
	var req AssignRepoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RepoID == "" {
		rr.writeErrorResponse(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := rr.store.AddRepoToGroup(chi.URLParam(r, "id"), req.RepoID); err != nil {
		rr.writeErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteGroupRepo handles DELETE /api/groups/{id}/repositories/{repoID}
func (rr *Routes) deleteGroupRepo(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	repoID := chi.URLParam(r, "repoID")
	if err := rr.store.RemoveRepoFromGroup(groupID, repoID); err != nil {
		rr.writeErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// tokenByValue finds the stored token matching a just-saved credential so the
// response carries the assigned ID.
func (rr *Routes) tokenByValue(saved domain.PlatformToken) TokenResponse {
	for _, t := range rr.store.Tokens() {
		if t.Platform == saved.Platform && t.Token == strings.TrimSpace(saved.Token) {
			return TokenResponse{ID: t.ID, Platform: t.Platform, Name: t.Name}
		}
	}
	return TokenResponse{ID: saved.ID, Platform: saved.Platform, Name: saved.Name}
}

func statusForError(err error) int {
	if strings.Contains(err.Error(), "not found") {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func queryParam(r *http.Request, name string) (string, bool) {
	values := r.URL.Query()
	if !values.Has(name) {
		return "", false
	}
	return values.Get(name), true
}

// writeJSONResponse writes a JSON response with the given data
func (*Routes) writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.LogError("ENCODE_RESPONSE", "", err)
	}
}

// writeErrorResponse writes a standardized error response
func (*Routes) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		logger.LogError("ENCODE_RESPONSE", "", err)
	}
}
