package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigurationIsValid(t *testing.T) {
	tests := []struct {
		name    string
		config  configuration
		wantErr string
	}{
		{
			name: "valid",
			config: configuration{
				SourceChannelID:        "source",
				DestinationChannelID:   "dest",
				EmbedCheckDelaySeconds: 8,
			},
		},
		{
			name: "same source and destination is valid",
			config: configuration{
				SourceChannelID:      "chan",
				DestinationChannelID: "chan",
			},
		},
		{
			name: "missing source channel",
			config: configuration{
				DestinationChannelID: "dest",
			},
			wantErr: "source channel ID is required",
		},
		{
			name: "missing destination channel",
			config: configuration{
				SourceChannelID: "source",
			},
			wantErr: "destination channel ID is required",
		},
		{
			name: "negative embed check delay",
			config: configuration{
				SourceChannelID:        "source",
				DestinationChannelID:   "dest",
				EmbedCheckDelaySeconds: -1,
			},
			wantErr: "embed check delay must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.IsValid()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestConfigurationClone(t *testing.T) {
	original := &configuration{
		SourceChannelID:        "source",
		DestinationChannelID:   "dest",
		EmbedCheckDelaySeconds: 8,
		EnableDuplicateReplies: true,
	}

	clone := original.Clone()

	assert.Equal(t, original, clone)
	assert.NotSame(t, original, clone)
}
