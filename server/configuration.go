package main

import (
	"reflect"

	"github.com/pkg/errors"
)

// configuration captures the plugin's external configuration as exposed in the Mattermost server
// configuration, as well as values computed from the configuration. Any public fields will be
// deserialized from the Mattermost server configuration in OnConfigurationChange.
//
// As plugins are inherently concurrent (hooks being called asynchronously), and the plugin
// configuration can change at any time, access to the configuration must be synchronized. The
// strategy used in this plugin is to guard a pointer to the configuration, and clone the entire
// struct whenever it changes. You may replace this with whatever strategy you choose.
//
// If you add non-reference types to your configuration struct, be sure to rewrite Clone as a deep
// copy appropriate for your types.
type configuration struct {
	// SourceChannelID is the channel watched for links to relay.
	SourceChannelID string `json:"sourceChannelId"`

	// DestinationChannelID is the channel relayed links are posted to. When it equals
	// SourceChannelID, links are rewritten in place instead of moved.
	DestinationChannelID string `json:"destinationChannelId"`

	// EmbedCheckDelaySeconds is how long to wait before re-inspecting a relayed
	// mirror link's embed. Zero falls back to the default.
	EmbedCheckDelaySeconds int `json:"embedCheckDelaySeconds"`

	// EnableDuplicateReplies controls whether the bot replies to the first poster's
	// message when a duplicate is removed.
	EnableDuplicateReplies bool `json:"enableDuplicateReplies"`
}

// rawConfiguration mirrors the setting keys declared in plugin.json.
type rawConfiguration struct {
	SourceChannelID        string `json:"SourceChannelId"`
	DestinationChannelID   string `json:"DestinationChannelId"`
	EmbedCheckDelaySeconds int    `json:"EmbedCheckDelaySeconds"`
	EnableDuplicateReplies bool   `json:"EnableDuplicateReplies"`
}

// Clone shallow copies the configuration. Your implementation may require a deep copy if
// your configuration has reference types.
func (c *configuration) Clone() *configuration {
	var clone = *c
	return &clone
}

// IsValid reports whether the configuration is complete enough to run the relay.
// Missing channel IDs are fatal: OnConfigurationChange returns the error and the
// server refuses to run the plugin.
func (c *configuration) IsValid() error {
	if c.SourceChannelID == "" {
		return errors.New("source channel ID is required")
	}
	if c.DestinationChannelID == "" {
		return errors.New("destination channel ID is required")
	}
	if c.EmbedCheckDelaySeconds < 0 {
		return errors.New("embed check delay must not be negative")
	}
	return nil
}

// getConfiguration retrieves the active configuration under lock, making it safe to use
// concurrently. The active configuration may change underneath the client of this method, but
// the struct returned by this API call is considered immutable.
func (p *Plugin) getConfiguration() *configuration {
	p.configurationLock.RLock()
	defer p.configurationLock.RUnlock()

	if p.configuration == nil {
		return &configuration{}
	}

	return p.configuration
}

// setConfiguration replaces the active configuration under lock.
//
// Do not call setConfiguration while holding the configurationLock, as sync.Mutex is not
// reentrant. In particular, avoid using the plugin API entirely, as this may in turn trigger a
// hook back into the plugin. If that hook attempts to acquire this lock, a deadlock may occur.
//
// This method panics if setConfiguration is called with the existing configuration. This almost
// certainly means that the configuration was modified without being cloned and may result in
// an unsafe access.
func (p *Plugin) setConfiguration(configuration *configuration) {
	p.configurationLock.Lock()
	defer p.configurationLock.Unlock()

	if configuration != nil && p.configuration == configuration {
		// Ignore assignment if the configuration struct is empty. Go will optimize the
		// allocation for same to point at the same memory address, breaking the check
		// above.
		if reflect.ValueOf(*configuration).NumField() == 0 {
			return
		}

		panic("setConfiguration called with the existing configuration")
	}

	p.configuration = configuration
}

// OnConfigurationChange is invoked when configuration changes may have been made.
func (p *Plugin) OnConfigurationChange() error {
	var rawConfig = new(rawConfiguration)

	// Load the raw configuration fields from the Mattermost server configuration.
	if err := p.API.LoadPluginConfiguration(rawConfig); err != nil {
		return errors.Wrap(err, "failed to load plugin configuration")
	}

	config := &configuration{
		SourceChannelID:        rawConfig.SourceChannelID,
		DestinationChannelID:   rawConfig.DestinationChannelID,
		EmbedCheckDelaySeconds: rawConfig.EmbedCheckDelaySeconds,
		EnableDuplicateReplies: rawConfig.EnableDuplicateReplies,
	}

	if err := config.IsValid(); err != nil {
		p.API.LogError("Invalid link relay configuration", "error", err.Error())
		return errors.Wrap(err, "invalid configuration")
	}

	p.setConfiguration(config)

	return nil
}
