package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/mattermost/mattermost/server/public/plugin"
	"github.com/mattermost/mattermost/server/public/pluginapi"
	"github.com/mattermost/mattermost/server/public/pluginapi/cluster"
	"github.com/pkg/errors"

	"github.com/relaybot/mattermost-plugin-link-relay/server/command"
	"github.com/relaybot/mattermost-plugin-link-relay/server/store/kvstore"
)

// Plugin implements the interface expected by the Mattermost server to communicate between the server and plugin processes.
type Plugin struct {
	plugin.MattermostPlugin

	// kvstore is the client used to read/write KV records for this plugin.
	kvstore kvstore.KVStore

	// client is the Mattermost server API client.
	client *pluginapi.Client

	// commandClient is the client used to register and execute slash commands.
	commandClient command.Command

	backgroundJob *cluster.Job

	// configurationLock synchronizes access to the configuration.
	configurationLock sync.RWMutex

	// configuration is the active plugin configuration. Consult getConfiguration and
	// setConfiguration for usage.
	configuration *configuration

	// botService manages the relay bot account
	botService *BotService

	// linkCache is the duplicate-link cache shared by the processor, the job
	// and the slash command.
	linkCache *LinkCache

	// transformer holds the platform rewrite rule table
	transformer *PlatformTransformer

	// relayProcessor handles relaying of URLs in posts
	relayProcessor *RelayProcessor
}

// OnActivate is invoked when the plugin is activated. If an error is returned, the plugin will be deactivated.
func (p *Plugin) OnActivate() error {
	p.client = pluginapi.NewClient(p.API, p.Driver)

	p.kvstore = kvstore.NewKVStore(p.client)

	// Initialize bot service and ensure bot exists
	p.botService = NewBotService(p.API)
	if err := p.botService.EnsureBotExists(); err != nil {
		return errors.Wrap(err, "failed to ensure bot account exists")
	}

	p.linkCache = NewLinkCache(p.API, p.kvstore)

	p.commandClient = command.NewCommandHandler(p.client, p.linkCache)

	// Initialize the relay pipeline
	p.transformer = NewPlatformTransformer()
	extractor := NewLinkExtractor()
	resolver := NewRedirectResolver(p.API, p.transformer, DefaultResolveTimeout)
	replyService := NewDuplicateReplyService(p.API, p.botService.GetBotID())
	embedChecker := NewEmbedHealthChecker(p.API)
	p.relayProcessor = NewRelayProcessor(p.API, extractor, resolver, p.linkCache, replyService, embedChecker, p.botService.GetBotID())

	p.probeDestinationChannel()

	job, err := cluster.Schedule(
		p.API,
		"BackgroundJob",
		cluster.MakeWaitForRoundedInterval(1*time.Hour),
		p.runJob,
	)
	if err != nil {
		return errors.Wrap(err, "failed to schedule background job")
	}

	p.backgroundJob = job

	return nil
}

// OnDeactivate is invoked when the plugin is deactivated.
func (p *Plugin) OnDeactivate() error {
	if p.backgroundJob != nil {
		if err := p.backgroundJob.Close(); err != nil {
			p.API.LogError("Failed to close background job", "err", err)
		}
	}
	return nil
}

// probeDestinationChannel verifies the destination channel is reachable at
// startup. Failure is not fatal: the guide is logged so the operator can fix
// channel membership without an activation loop.
func (p *Plugin) probeDestinationChannel() {
	config := p.getConfiguration()
	if config.DestinationChannelID == "" {
		return
	}

	channel, appErr := p.API.GetChannel(config.DestinationChannelID)
	if appErr != nil {
		p.API.LogError("Cannot access destination channel", "channelID", config.DestinationChannelID, "error", appErr.Error())
		p.API.LogError(permissionsGuide(config.DestinationChannelID))
		return
	}

	p.API.LogInfo("Relaying links to channel", "channel", channel.Name, "channelID", channel.Id)
}

// This will execute the commands that were registered in the NewCommandHandler function.
func (p *Plugin) ExecuteCommand(c *plugin.Context, args *model.CommandArgs) (*model.CommandResponse, *model.AppError) {
	response, err := p.commandClient.Handle(args)
	if err != nil {
		return nil, model.NewAppError("ExecuteCommand", "plugin.command.execute_command.app_error", nil, err.Error(), http.StatusInternalServerError)
	}
	return response, nil
}

// MessageHasBeenPosted is invoked when a message has been posted by a user.
// This hook is called after the message has been committed to the database.
func (p *Plugin) MessageHasBeenPosted(c *plugin.Context, post *model.Post) {
	// Ignore messages from the bot itself to prevent infinite loops
	if p.botService != nil && post.UserId == p.botService.GetBotID() {
		return
	}

	// Get current configuration
	config := p.getConfiguration()
	if config.SourceChannelID == "" || config.DestinationChannelID == "" {
		return
	}

	// Process the post for relaying (async, non-blocking)
	go p.relayProcessor.ProcessPost(post, config)
}

// See https://developers.mattermost.com/extend/plugins/server/reference/
