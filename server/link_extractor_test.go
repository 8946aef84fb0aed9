package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLinks(t *testing.T) {
	extractor := NewLinkExtractor()

	tests := []struct {
		name     string
		message  string
		expected []ExtractedLink
	}{
		{
			name:     "no links",
			message:  "just chatting",
			expected: nil,
		},
		{
			name:    "single link",
			message: "check this https://x.com/u/status/123",
			expected: []ExtractedLink{
				{Domain: "x.com", Path: "/u/status/123", Raw: "https://x.com/u/status/123"},
			},
		},
		{
			name:    "www prefix is stripped",
			message: "https://www.x.com/u/status/789",
			expected: []ExtractedLink{
				{Domain: "x.com", Path: "/u/status/789", Raw: "https://x.com/u/status/789"},
			},
		},
		{
			name:    "trailing punctuation is trimmed",
			message: "look: https://reddit.com/r/golang/comments/abc/title/, wild!",
			expected: []ExtractedLink{
				{Domain: "reddit.com", Path: "/r/golang/comments/abc/title/", Raw: "https://reddit.com/r/golang/comments/abc/title/"},
			},
		},
		{
			name:    "multiple links in order",
			message: "https://x.com/a/status/1 and https://youtube.com/watch?v=ABC",
			expected: []ExtractedLink{
				{Domain: "x.com", Path: "/a/status/1", Raw: "https://x.com/a/status/1"},
				{Domain: "youtube.com", Path: "/watch?v=ABC", Raw: "https://youtube.com/watch?v=ABC"},
			},
		},
		{
			name:    "http scheme is normalized to https",
			message: "http://x.com/u/status/5",
			expected: []ExtractedLink{
				{Domain: "x.com", Path: "/u/status/5", Raw: "https://x.com/u/status/5"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractor.ExtractLinks(tt.message))
		})
	}
}

func TestExtractMentions(t *testing.T) {
	extractor := NewLinkExtractor()

	tests := []struct {
		name         string
		message      string
		wantCleaned  string
		wantMentions []string
	}{
		{
			name:         "no mentions",
			message:      "hello world",
			wantCleaned:  "hello world",
			wantMentions: nil,
		},
		{
			name:         "user mention",
			message:      "<@123456> look at this",
			wantCleaned:  "look at this",
			wantMentions: []string{"<@123456>"},
		},
		{
			name:         "nickname and role mentions",
			message:      "<@!111> <@&222> check it",
			wantCleaned:  "check it",
			wantMentions: []string{"<@!111>", "<@&222>"},
		},
		{
			name:         "mention mid-sentence collapses whitespace",
			message:      "hey  <@123>  look",
			wantCleaned:  "hey look",
			wantMentions: []string{"<@123>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, mentions := extractor.ExtractMentions(tt.message)
			assert.Equal(t, tt.wantCleaned, cleaned)
			assert.Equal(t, tt.wantMentions, mentions)
		})
	}
}

func TestRemoveLinks(t *testing.T) {
	extractor := NewLinkExtractor()

	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{
			name:     "link only",
			message:  "https://x.com/u/status/123",
			expected: "",
		},
		{
			name:     "text around link",
			message:  "look at https://x.com/u/status/123 so good",
			expected: "look at so good",
		},
		{
			name:     "no links",
			message:  "nothing to remove",
			expected: "nothing to remove",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractor.RemoveLinks(tt.message))
		})
	}
}
