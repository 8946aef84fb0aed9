package main

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mattermost/mattermost/server/public/plugin"
	"github.com/pkg/errors"
)

// DefaultResolveTimeout bounds every redirect-expansion request.
const DefaultResolveTimeout = 5 * time.Second

const resolverUserAgent = "Mattermost-Link-Relay-Plugin/1.0"

// shortLinkPatterns are the mobile/short URL shapes that hide the canonical
// destination behind a redirect.
var shortLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://vm\.tiktok\.com/\w+`),
	regexp.MustCompile(`^https?://vt\.tiktok\.com/\w+`),
	regexp.MustCompile(`^https?://(?:www\.)?tiktok\.com/t/\w+`),
	regexp.MustCompile(`^https?://redd\.it/\w+`),
	regexp.MustCompile(`^https?://(?:www\.|old\.)?reddit\.com/r/[^/]+/s/\w+`),
}

// RedirectResolver expands short/mobile links to their canonical destination
// before transformation. Every network call is bounded by a short timeout and
// fails soft: on any error the original URL is returned unchanged.
type RedirectResolver struct {
	api         plugin.API
	client      *http.Client
	transformer *PlatformTransformer
}

// NewRedirectResolver creates a resolver with the given request timeout.
func NewRedirectResolver(api plugin.API, transformer *PlatformTransformer, timeout time.Duration) *RedirectResolver {
	if timeout == 0 {
		timeout = DefaultResolveTimeout
	}
	return &RedirectResolver{
		api: api,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Follow redirects
				return nil
			},
		},
		transformer: transformer,
	}
}

// NeedsExpansion reports whether the URL matches a known short-link shape.
func (r *RedirectResolver) NeedsExpansion(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, pattern := range shortLinkPatterns {
		if pattern.MatchString(lower) {
			return true
		}
	}
	return false
}

// Expand follows redirects to the canonical destination URL. It never fails:
// any network error, timeout or bad status returns the original URL and logs
// a warning.
func (r *RedirectResolver) Expand(rawURL string) string {
	resolved, err := r.expandWithMethod(http.MethodHead, rawURL)
	if err == nil {
		return resolved
	}

	// Some hosts reject HEAD; retry once with GET before giving up.
	resolved, getErr := r.expandWithMethod(http.MethodGet, rawURL)
	if getErr == nil {
		return resolved
	}

	r.api.LogWarn("Failed to expand short link, using original URL", "url", rawURL, "error", err.Error())
	return rawURL
}

func (r *RedirectResolver) expandWithMethod(method, rawURL string) (string, error) {
	req, err := http.NewRequest(method, rawURL, http.NoBody)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("User-Agent", resolverUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "%s request failed", method)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", errors.Errorf("%s request returned status %d", method, resp.StatusCode)
	}

	return resp.Request.URL.String(), nil
}

// ResolveAndTransform expands the URL if it is a known short-link shape, then
// classifies it through the transformer. This composition is what the relay
// calls for every candidate link.
func (r *RedirectResolver) ResolveAndTransform(rawURL string) (Classification, string) {
	resolved := rawURL
	if r.NeedsExpansion(rawURL) {
		resolved = r.Expand(rawURL)
	}
	return r.transformer.Classify(resolved)
}
