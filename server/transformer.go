package main

import (
	"regexp"
	"strings"
)

// Classification is the outcome of classifying a URL for relay.
type Classification int

const (
	// ClassMedia marks direct media content that embeds fine on its own. Media
	// URLs are never rewritten and the source message is left intact.
	ClassMedia Classification = iota
	// ClassRewritten marks a URL rewritten to its embed-friendly mirror form.
	ClassRewritten
	// ClassUnchanged marks an allow-listed URL that needs no rewriting
	// (including URLs already in mirror form).
	ClassUnchanged
	// ClassNotAllowed marks a URL outside the allow-list; it is dropped silently.
	ClassNotAllowed
)

// mediaExtensions are file suffixes treated as direct media content.
var mediaExtensions = []string{
	// Images
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff",
	// Videos
	".mp4", ".webm", ".mov", ".avi", ".mkv", ".flv", ".m4v", ".gifv",
}

// videoEmbedDomains host direct-embedding video content. YouTube shorts are
// deliberately absent: they go through the YouTube rewrite rule instead.
var videoEmbedDomains = []string{
	"gfycat.com",
	"streamable.com",
	"v.redd.it",
	"clips.twitch.tv",
	"medal.tv",
	"tenor.com",
	"giphy.com",
}

// videoPathPatterns match clip/gallery/view pages of known video services.
var videoPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`gfycat\.com/[a-z]+$`),
	regexp.MustCompile(`clips\.twitch\.tv/[a-z]+$`),
	regexp.MustCompile(`v\.redd\.it/[a-z0-9]+$`),
	regexp.MustCompile(`streamable\.com/[a-z0-9]+$`),
	regexp.MustCompile(`medal\.tv/clips/[a-z0-9]+`),
	regexp.MustCompile(`tenor\.com/view/[a-z0-9-]+`),
	regexp.MustCompile(`giphy\.com/gifs/[a-z0-9-]+`),
}

const (
	redditMirrorHost  = "vxreddit.com"
	twitterMirrorHost = "fxtwitter.com"
	youtubeShortHost  = "youtu.be"
	instagramMirror   = "ddinstagram.com"
	tiktokMirrorHost  = "vxtiktok.com"
	twitterFallback   = "fixupx.com"
)

// hostSubstitution is one entry of the generic host substitution table.
type hostSubstitution struct {
	from string
	to   string
}

// genericSubstitutions maps remaining platforms to their embed mirrors.
// Evaluated after the platform-specific rules; a host already equal to a
// mirror is left unchanged.
var genericSubstitutions = []hostSubstitution{
	{from: "pixiv.net", to: "phixiv.net"},
	{from: "bsky.app", to: "bskx.app"},
}

// rewriteRule pairs a host predicate with a rewrite. Rules are evaluated in
// order and the first matching rule wins; a rule matching its own mirror host
// makes the transform idempotent.
type rewriteRule struct {
	name    string
	domains []string
	rewrite func(host, path string) string
}

// PlatformTransformer classifies URLs and rewrites them into embed-friendly
// mirror forms according to a fixed, ordered rule table.
type PlatformTransformer struct {
	rules   []rewriteRule
	allowed []string
}

// NewPlatformTransformer creates a transformer with the built-in rule table.
func NewPlatformTransformer() *PlatformTransformer {
	t := &PlatformTransformer{}

	t.rules = []rewriteRule{
		{
			name:    "reddit",
			domains: []string{"reddit.com", "redd.it", redditMirrorHost},
			rewrite: rewriteReddit,
		},
		{
			name:    "twitter",
			domains: []string{"twitter.com", "x.com", twitterMirrorHost},
			rewrite: rewriteTwitter,
		},
		{
			name:    "youtube",
			domains: []string{"youtube.com", youtubeShortHost},
			rewrite: rewriteYouTube,
		},
		{
			name:    "instagram",
			domains: []string{"instagram.com", instagramMirror},
			rewrite: func(host, path string) string { return "https://" + instagramMirror + path },
		},
		{
			name:    "tiktok",
			domains: []string{"tiktok.com", tiktokMirrorHost},
			rewrite: rewriteGeneric(tiktokMirrorHost),
		},
		{
			name:    "generic",
			domains: genericDomains(),
			rewrite: rewriteSubstitution,
		},
	}

	for _, rule := range t.rules {
		t.allowed = append(t.allowed, rule.domains...)
	}
	// The embed-failure fallback mirror is allowed but never rewritten, so a
	// corrected link does not bounce back to the failing mirror.
	t.allowed = append(t.allowed, twitterFallback)

	return t
}

// Classify applies the media gate, the allow-list gate and the rewrite rules,
// in that order. The returned string is the rewritten URL for ClassRewritten,
// the input URL for ClassUnchanged, and empty otherwise.
func (t *PlatformTransformer) Classify(rawURL string) (Classification, string) {
	if t.IsMediaURL(rawURL) {
		return ClassMedia, ""
	}

	host, path, ok := splitURL(rawURL)
	if !ok {
		return ClassNotAllowed, ""
	}

	if !t.isAllowed(host) {
		return ClassNotAllowed, ""
	}

	for _, rule := range t.rules {
		if !matchesAny(host, rule.domains) {
			continue
		}
		rewritten := rule.rewrite(host, path)
		if rewritten == rawURL {
			return ClassUnchanged, rawURL
		}
		return ClassRewritten, rewritten
	}

	return ClassUnchanged, rawURL
}

// Transform returns the relayable form of a URL, or empty when the URL is
// media or not allow-listed.
func (t *PlatformTransformer) Transform(rawURL string) string {
	class, out := t.Classify(rawURL)
	switch class {
	case ClassRewritten, ClassUnchanged:
		return out
	default:
		return ""
	}
}

// IsMediaURL reports whether the URL is a direct link to media or to a video
// platform that embeds well on its own.
func (t *PlatformTransformer) IsMediaURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)

	pathOnly := lower
	if idx := strings.Index(pathOnly, "?"); idx != -1 {
		pathOnly = pathOnly[:idx]
	}
	for _, ext := range mediaExtensions {
		if strings.HasSuffix(pathOnly, ext) {
			return true
		}
	}

	host, _, ok := splitURL(lower)
	if ok {
		for _, domain := range videoEmbedDomains {
			if matchesDomain(host, domain) {
				return true
			}
		}
		// Imgur embeds directly only for its video forms.
		if matchesDomain(host, "imgur.com") &&
			(strings.Contains(lower, ".mp4") || strings.Contains(lower, ".gifv")) {
			return true
		}
	}

	for _, pattern := range videoPathPatterns {
		if pattern.MatchString(lower) {
			return true
		}
	}

	return false
}

func (t *PlatformTransformer) isAllowed(host string) bool {
	return matchesAny(host, t.allowed)
}

// AllowedDomains returns the allow-list, primarily for status reporting.
func (t *PlatformTransformer) AllowedDomains() []string {
	out := make([]string, len(t.allowed))
	copy(out, t.allowed)
	return out
}

// splitURL splits a URL into its registered host (lowercased, www. stripped)
// and the path-plus-query remainder.
func splitURL(rawURL string) (host, path string, ok bool) {
	match := urlPattern.FindStringSubmatch(rawURL)
	if match == nil {
		return "", "", false
	}
	return strings.ToLower(match[1]), match[2], true
}

// matchesDomain reports whether host equals domain or is a subdomain of it.
// Matching is on label boundaries, so ddinstagram.com never matches
// instagram.com.
func matchesDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func matchesAny(host string, domains []string) bool {
	for _, domain := range domains {
		if matchesDomain(host, domain) {
			return true
		}
	}
	return false
}

// rewriteReddit strips the query string, trims any trailing slash, and sends
// post pages to the embed mirror. Everything else goes to the canonical host,
// which embeds subreddit and profile pages correctly on its own.
func rewriteReddit(host, path string) string {
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	path = strings.TrimSuffix(path, "/")
	if strings.Contains(path, "/comments/") {
		return "https://" + redditMirrorHost + path
	}
	// A redd.it/{id} link whose expansion failed soft lands here with a bare
	// "/{id}" path; reddit.com/{id} serves the same shortlink, so the
	// fallback still reaches the post.
	return "https://reddit.com" + path
}

// rewriteTwitter swaps any Twitter/X host for the embed mirror, path unchanged.
func rewriteTwitter(host, path string) string {
	return "https://" + twitterMirrorHost + path
}

var youtubeWatchPattern = regexp.MustCompile(`watch\?v=([^&\s]+)`)

// rewriteYouTube emits the short-host form for watch, shorts and live URLs.
// Anything else, including links already on the short host, passes through.
func rewriteYouTube(host, path string) string {
	if match := youtubeWatchPattern.FindStringSubmatch(path); match != nil {
		return "https://" + youtubeShortHost + "/" + match[1]
	}
	for _, prefix := range []string{"/shorts/", "/live/"} {
		if idx := strings.Index(path, prefix); idx != -1 {
			id := path[idx+len(prefix):]
			if cut := strings.IndexAny(id, "?/"); cut != -1 {
				id = id[:cut]
			}
			if id != "" {
				return "https://" + youtubeShortHost + "/" + id
			}
		}
	}
	return "https://" + host + path
}

// rewriteGeneric substitutes the host for the given mirror, path unchanged.
func rewriteGeneric(mirror string) func(host, path string) string {
	return func(host, path string) string {
		return "https://" + mirror + path
	}
}

// rewriteSubstitution applies the generic substitution table. Hosts already on
// a mirror are mapped to themselves.
func rewriteSubstitution(host, path string) string {
	for _, sub := range genericSubstitutions {
		if matchesDomain(host, sub.from) || matchesDomain(host, sub.to) {
			return "https://" + sub.to + path
		}
	}
	return "https://" + host + path
}

func genericDomains() []string {
	var domains []string
	for _, sub := range genericSubstitutions {
		domains = append(domains, sub.from, sub.to)
	}
	return domains
}
