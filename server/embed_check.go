package main

import (
	"strings"
	"time"

	"github.com/dyatlov/go-opengraph/opengraph"
	"github.com/mattermost/mattermost/server/public/model"
	"github.com/mattermost/mattermost/server/public/plugin"
)

// DefaultEmbedCheckDelay is how long to wait before re-inspecting a relayed
// mirror link's embed.
const DefaultEmbedCheckDelay = 8 * time.Second

// embedFailureMarkers are substrings the failing mirror renders into its embed
// instead of the actual content. Matched case-insensitively against embed
// title, description and site name.
var embedFailureMarkers = []string{
	"sorry, that post doesn't exist",
	"failed to scan your link",
	"instance has been rate limited",
}

// embedFallbackHosts maps a mirror host with known embed failures to the
// documented fallback mirror substituted on correction.
var embedFallbackHosts = map[string]string{
	twitterMirrorHost: twitterFallback,
}

// EmbedHealthChecker re-fetches a relayed post after a fixed delay and, when
// the mirror failed to render an embed, edits the post onto the fallback
// mirror host.
type EmbedHealthChecker struct {
	api plugin.API

	// sleep is swappable so tests don't wait out the delay.
	sleep func(time.Duration)
}

// NewEmbedHealthChecker creates a new embed health checker
func NewEmbedHealthChecker(api plugin.API) *EmbedHealthChecker {
	return &EmbedHealthChecker{
		api:   api,
		sleep: time.Sleep,
	}
}

// NeedsCheck reports whether the relayed URL is on a mirror with known embed
// failures.
func (e *EmbedHealthChecker) NeedsCheck(relayedURL string) bool {
	host, _, ok := splitURL(relayedURL)
	if !ok {
		return false
	}
	_, known := embedFallbackHosts[host]
	return known
}

// CheckAndCorrect blocks its own goroutine for the configured delay, then
// inspects the posted message's embeds and edits the post if a failure marker
// is found. It must be called on a dedicated goroutine so it never delays the
// handling of other messages.
func (e *EmbedHealthChecker) CheckAndCorrect(postID string, delay time.Duration) {
	if delay <= 0 {
		delay = DefaultEmbedCheckDelay
	}
	e.sleep(delay)

	post, appErr := e.api.GetPost(postID)
	if appErr != nil || post == nil {
		e.api.LogWarn("Failed to re-fetch relayed post for embed check", "postID", postID)
		return
	}

	if !embedLooksBroken(post) {
		return
	}

	corrected := post.Message
	for mirror, fallback := range embedFallbackHosts {
		corrected = strings.ReplaceAll(corrected, mirror, fallback)
	}
	if corrected == post.Message {
		return
	}

	post.Message = corrected
	if _, appErr := e.api.UpdatePost(post); appErr != nil {
		e.api.LogWarn("Failed to edit relayed post onto fallback mirror", "postID", postID, "error", appErr.Error())
		return
	}

	e.api.LogInfo("Corrected failed embed", "postID", postID)
}

// embedLooksBroken scans the post's embed metadata for a failure marker.
func embedLooksBroken(post *model.Post) bool {
	if post.Metadata == nil {
		return false
	}
	for _, embed := range post.Metadata.Embeds {
		if embed == nil {
			continue
		}
		og, ok := embed.Data.(*opengraph.OpenGraph)
		if !ok || og == nil {
			continue
		}
		if containsFailureMarker(og.Title) || containsFailureMarker(og.Description) || containsFailureMarker(og.SiteName) {
			return true
		}
	}
	return false
}

func containsFailureMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range embedFailureMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
