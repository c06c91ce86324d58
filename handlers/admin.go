package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"octoboard/internal/database"
	"octoboard/models"
)

// profileStore is the subset of the profile store the admin API uses.
type profileStore interface {
	Get(id int64) (*models.Profile, error)
	List(activeOnly bool) ([]models.Profile, error)
	Create(p *models.Profile) (*models.Profile, error)
	Update(p *models.Profile) error
	Delete(id int64) error
}

var _ profileStore = (*database.ProfileStore)(nil)

// syncService triggers an immediate refresh for one profile.
type syncService interface {
	SyncProfile(ctx context.Context, id int64) error
}

// AdminHandler handles the authenticated profile management API.
type AdminHandler struct {
	profiles profileStore
	sync     syncService
	apiKey   string
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(profiles profileStore, sync syncService, apiKey string) *AdminHandler {
	return &AdminHandler{
		profiles: profiles,
		sync:     sync,
		apiKey:   apiKey,
	}
}

// RequireKey rejects requests whose X-API-Key header does not match the
// configured admin key.
func (h *AdminHandler) RequireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if h.apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.apiKey)) != 1 {
			jsonError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// profileRequest is the create/update payload. Pointer fields distinguish
// "omitted" from the zero value so creates can apply defaults and updates
// can leave settings untouched.
type profileRequest struct {
	Name         *string           `json:"name"`
	Username     *string           `json:"username"`
	DisplayName  *string           `json:"display_name"`
	Token        *string           `json:"token"`
	ExcludedOrgs *string           `json:"excluded_orgs"`
	Active       *bool             `json:"active"`
	MaxRepos     *int              `json:"max_repos"`
	Theme        *string           `json:"theme"`
	Show         *models.ShowFlags `json:"show"`
}

// ListProfiles returns every profile, including inactive ones.
// GET /api/profiles
func (h *AdminHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List(false)
	if err != nil {
		jsonError(w, "Failed to list profiles: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

// CreateProfile registers a new profile configuration.
// POST /api/profiles
func (h *AdminHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Username == nil || strings.TrimSpace(*req.Username) == "" {
		jsonError(w, "Username required", http.StatusBadRequest)
		return
	}

	profile := &models.Profile{
		Username: strings.TrimSpace(*req.Username),
		Active:   true,
		MaxRepos: models.DefaultMaxRepos,
		Theme:    models.DefaultTheme,
		Show:     models.DefaultShowFlags(),
	}
	profile.Name = profile.Username
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		profile.Name = strings.TrimSpace(*req.Name)
	}
	applyRequest(profile, &req)

	created, err := h.profiles.Create(profile)
	if err != nil {
		jsonError(w, "Failed to create profile: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// UpdateProfile applies partial changes to an existing profile. An empty or
// omitted token keeps the stored one.
// PUT /api/profiles/{profileID}
func (h *AdminHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["profileID"], 10, 64)
	if err != nil {
		jsonError(w, "Invalid profile ID", http.StatusBadRequest)
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := h.profiles.Get(id)
	if err != nil {
		if errors.Is(err, database.ErrProfileNotFound) {
			jsonError(w, "Profile not found", http.StatusNotFound)
			return
		}
		jsonError(w, "Failed to load profile: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		profile.Name = strings.TrimSpace(*req.Name)
	}
	if req.Username != nil && strings.TrimSpace(*req.Username) != "" {
		profile.Username = strings.TrimSpace(*req.Username)
	}
	applyRequest(profile, &req)

	if err := h.profiles.Update(profile); err != nil {
		jsonError(w, "Failed to update profile: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// DeleteProfile removes a profile and its cached snapshot.
// DELETE /api/profiles/{profileID}
func (h *AdminHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["profileID"], 10, 64)
	if err != nil {
		jsonError(w, "Invalid profile ID", http.StatusBadRequest)
		return
	}

	if err := h.profiles.Delete(id); err != nil {
		if errors.Is(err, database.ErrProfileNotFound) {
			jsonError(w, "Profile not found", http.StatusNotFound)
			return
		}
		jsonError(w, "Failed to delete profile: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
	})
}

// SyncNow forces an immediate refresh for one profile.
// POST /api/profiles/{profileID}/sync
func (h *AdminHandler) SyncNow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["profileID"], 10, 64)
	if err != nil {
		jsonError(w, "Invalid profile ID", http.StatusBadRequest)
		return
	}

	if err := h.sync.SyncProfile(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrProfileNotFound) {
			jsonError(w, "Profile not found", http.StatusNotFound)
			return
		}
		jsonError(w, "Sync failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
	})
}

func applyRequest(profile *models.Profile, req *profileRequest) {
	if req.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Token != nil && *req.Token != "" {
		profile.Token = *req.Token
	}
	if req.ExcludedOrgs != nil {
		profile.ExcludedOrgs = *req.ExcludedOrgs
	}
	if req.Active != nil {
		profile.Active = *req.Active
	}
	if req.MaxRepos != nil && *req.MaxRepos > 0 {
		profile.MaxRepos = *req.MaxRepos
	}
	if req.Theme != nil && *req.Theme != "" {
		profile.Theme = *req.Theme
	}
	if req.Show != nil {
		profile.Show = *req.Show
	}
}
