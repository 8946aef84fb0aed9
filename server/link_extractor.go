package main

import (
	"regexp"
	"strings"
)

// urlPattern matches http(s) URLs and captures the host (with any www. prefix
// stripped) and the remainder of the URL up to whitespace or a quoting character.
var urlPattern = regexp.MustCompile(`https?://(?:www\.)?([^/\s]+)([^\s<>"']*)`)

// mentionPattern matches user and role mention tokens: <@id>, <@!id>, <@&id>.
var mentionPattern = regexp.MustCompile(`<@!?&?\d+>`)

// ExtractedLink is a single URL found in a message, split into the host and
// the path-plus-query remainder. Raw is the canonical reconstruction used for
// resolution, transformation and duplicate keying.
type ExtractedLink struct {
	Domain string
	Path   string
	Raw    string
}

// LinkExtractor finds URLs and mention tokens in free-form message text.
// It is pure: no network or state access, same input always yields the same
// ordered output.
type LinkExtractor struct{}

// NewLinkExtractor creates a new link extractor
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks extracts all URLs from a message in order of appearance.
func (e *LinkExtractor) ExtractLinks(message string) []ExtractedLink {
	var links []ExtractedLink

	matches := urlPattern.FindAllStringSubmatch(message, -1)
	for _, match := range matches {
		domain := match[1]
		path := strings.TrimRight(match[2], ".,;:!?)")
		if domain == "" {
			continue
		}
		links = append(links, ExtractedLink{
			Domain: domain,
			Path:   path,
			Raw:    "https://" + domain + path,
		})
	}

	return links
}

// ExtractMentions returns the mention tokens found in the message, in order,
// along with the message text with mentions removed and whitespace collapsed.
func (e *LinkExtractor) ExtractMentions(message string) (string, []string) {
	mentions := mentionPattern.FindAllString(message, -1)

	cleaned := mentionPattern.ReplaceAllString(message, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	return cleaned, mentions
}

// RemoveLinks strips every URL occurrence from the message and collapses
// whitespace. The result is the residual user text carried along with a
// relayed link.
func (e *LinkExtractor) RemoveLinks(message string) string {
	residual := urlPattern.ReplaceAllString(message, "")
	return strings.Join(strings.Fields(residual), " ")
}
