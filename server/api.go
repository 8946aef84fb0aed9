package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mattermost/mattermost/server/public/model"
	"github.com/mattermost/mattermost/server/public/plugin"
)

// ServeHTTP exposes a small read-only API for inspecting the relay.
// The root URL is currently <siteUrl>/plugins/com.mattermost.link-relay/api/v1/. Replace com.mattermost.link-relay with the plugin ID.
func (p *Plugin) ServeHTTP(c *plugin.Context, w http.ResponseWriter, r *http.Request) {
	router := mux.NewRouter()

	// Middleware to require that the user is logged in
	router.Use(p.MattermostAuthorizationRequired)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()

	apiRouter.HandleFunc("/status", p.GetStatus).Methods(http.MethodGet)
	apiRouter.HandleFunc("/recent-links", p.GetRecentLinks).Methods(http.MethodGet)
	apiRouter.HandleFunc("/config", p.GetConfig).Methods(http.MethodGet)

	router.ServeHTTP(w, r)
}

func (p *Plugin) MattermostAuthorizationRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("Mattermost-User-ID")
		if userID == "" {
			// Log for debugging - Mattermost should automatically add this header
			p.API.LogWarn("Missing Mattermost-User-ID header in request", "path", r.URL.Path, "method", r.Method)
			http.Error(w, "Not authorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetStatus returns the relay's runtime state
func (p *Plugin) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := struct {
		BotID          string   `json:"botId"`
		CachedLinks    int      `json:"cachedLinks"`
		AllowedDomains []string `json:"allowedDomains"`
	}{
		BotID:          p.botService.GetBotID(),
		CachedLinks:    p.linkCache.Size(),
		AllowedDomains: p.transformer.AllowedDomains(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		p.API.LogError("Failed to encode status", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// GetRecentLinks returns the non-expired cached link records, newest first
func (p *Plugin) GetRecentLinks(w http.ResponseWriter, r *http.Request) {
	type recentLink struct {
		URL       string    `json:"url"`
		Timestamp time.Time `json:"timestamp"`
		MessageID string    `json:"messageId"`
	}

	records := p.linkCache.Recent(50)
	links := make([]recentLink, 0, len(records))
	for _, record := range records {
		links = append(links, recentLink{
			URL:       record.URL,
			Timestamp: record.Timestamp,
			MessageID: record.MessageID,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(links); err != nil {
		p.API.LogError("Failed to encode recent links", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// GetConfig returns the current plugin configuration (admin only)
func (p *Plugin) GetConfig(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("Mattermost-User-ID")

	// Check if user is system admin
	user, appErr := p.API.GetUser(userID)
	if appErr != nil || !user.IsInRole(model.SystemAdminRoleId) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	config := p.getConfiguration()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(config); err != nil {
		p.API.LogError("Failed to encode config", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
