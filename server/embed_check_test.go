package main

import (
	"testing"
	"time"

	"github.com/dyatlov/go-opengraph/opengraph"
	"github.com/mattermost/mattermost/server/public/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNeedsCheck(t *testing.T) {
	checker := NewEmbedHealthChecker(setupAPI())

	assert.True(t, checker.NeedsCheck("https://fxtwitter.com/u/status/123"))
	assert.False(t, checker.NeedsCheck("https://youtu.be/ABC"))
	assert.False(t, checker.NeedsCheck("https://fixupx.com/u/status/123"))
	assert.False(t, checker.NeedsCheck("not a url"))
}

func TestCheckAndCorrectEditsBrokenEmbed(t *testing.T) {
	api := setupAPI()
	checker := NewEmbedHealthChecker(api)
	checker.sleep = func(time.Duration) {}

	broken := &model.Post{
		Id:      "relayed",
		Message: "https://fxtwitter.com/u/status/123",
		Metadata: &model.PostMetadata{
			Embeds: []*model.PostEmbed{
				{
					Type: model.PostEmbedOpengraph,
					Data: &opengraph.OpenGraph{Title: "Sorry, that post doesn't exist"},
				},
			},
		},
	}

	api.On("GetPost", "relayed").Return(broken, nil).Once()
	api.On("UpdatePost", mock.MatchedBy(func(post *model.Post) bool {
		return post.Id == "relayed" && post.Message == "https://fixupx.com/u/status/123"
	})).Return(&model.Post{Id: "relayed"}, nil).Once()

	checker.CheckAndCorrect("relayed", time.Second)

	api.AssertExpectations(t)
}

func TestCheckAndCorrectLeavesHealthyEmbedAlone(t *testing.T) {
	api := setupAPI()
	checker := NewEmbedHealthChecker(api)
	checker.sleep = func(time.Duration) {}

	healthy := &model.Post{
		Id:      "relayed",
		Message: "https://fxtwitter.com/u/status/123",
		Metadata: &model.PostMetadata{
			Embeds: []*model.PostEmbed{
				{
					Type: model.PostEmbedOpengraph,
					Data: &opengraph.OpenGraph{Title: "A perfectly fine post"},
				},
			},
		},
	}

	api.On("GetPost", "relayed").Return(healthy, nil).Once()

	checker.CheckAndCorrect("relayed", time.Second)

	api.AssertExpectations(t)
}

func TestCheckAndCorrectHandlesMissingPost(t *testing.T) {
	api := setupAPI()
	checker := NewEmbedHealthChecker(api)
	checker.sleep = func(time.Duration) {}

	api.On("GetPost", "gone").Return(nil, model.NewAppError("GetPost", "app.post.get.app_error", nil, "", 404)).Once()

	checker.CheckAndCorrect("gone", time.Second)

	api.AssertExpectations(t)
}

func TestEmbedLooksBroken(t *testing.T) {
	tests := []struct {
		name     string
		post     *model.Post
		expected bool
	}{
		{
			name:     "no metadata",
			post:     &model.Post{},
			expected: false,
		},
		{
			name: "failure marker in description",
			post: &model.Post{
				Metadata: &model.PostMetadata{
					Embeds: []*model.PostEmbed{
						{Data: &opengraph.OpenGraph{Description: "Failed to scan your link!"}},
					},
				},
			},
			expected: true,
		},
		{
			name: "non-opengraph embed data",
			post: &model.Post{
				Metadata: &model.PostMetadata{
					Embeds: []*model.PostEmbed{
						{Data: "some string"},
					},
				},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, embedLooksBroken(tt.post))
		})
	}
}
