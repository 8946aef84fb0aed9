package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/mattermost/mattermost/server/public/pluginapi"
	"github.com/pkg/errors"

	"github.com/relaybot/mattermost-plugin-link-relay/server/store/kvstore"
)

// LinkCache is the view of the duplicate-link cache the slash command needs.
type LinkCache interface {
	Size() int
	Recent(n int) []*kvstore.LinkRecord
	Cleanup() int
}

type Handler struct {
	client *pluginapi.Client
	cache  LinkCache
}

type Command interface {
	Handle(args *model.CommandArgs) (*model.CommandResponse, error)
}

const linkRelayCommandTrigger = "linkrelay"

const recentLinksShown = 10

// Register all your slash commands in the NewCommandHandler function.
func NewCommandHandler(client *pluginapi.Client, cache LinkCache) Command {
	err := client.SlashCommand.Register(&model.Command{
		Trigger:          linkRelayCommandTrigger,
		AutoComplete:     true,
		AutoCompleteDesc: "Inspect the link relay",
		AutoCompleteHint: "[stats|recent|sweep]",
		AutocompleteData: getAutocompleteData(),
	})
	if err != nil {
		client.Log.Error("Failed to register command", "error", err)
	}
	return &Handler{
		client: client,
		cache:  cache,
	}
}

func getAutocompleteData() *model.AutocompleteData {
	root := model.NewAutocompleteData(linkRelayCommandTrigger, "[stats|recent|sweep]", "Inspect the link relay")

	stats := model.NewAutocompleteData("stats", "", "Show cache statistics")
	root.AddCommand(stats)

	recent := model.NewAutocompleteData("recent", "", fmt.Sprintf("Show the %d most recent cached links", recentLinksShown))
	root.AddCommand(recent)

	sweep := model.NewAutocompleteData("sweep", "", "Remove expired link records now")
	root.AddCommand(sweep)

	return root
}

func (c *Handler) Handle(args *model.CommandArgs) (*model.CommandResponse, error) {
	fields := strings.Fields(args.Command)
	if len(fields) == 0 {
		return nil, errors.New("empty command")
	}

	trigger := strings.TrimPrefix(fields[0], "/")
	if trigger != linkRelayCommandTrigger {
		return nil, errors.Errorf("unknown command: %s", args.Command)
	}

	subcommand := "stats"
	if len(fields) > 1 {
		subcommand = fields[1]
	}

	switch subcommand {
	case "stats":
		return c.executeStats(), nil
	case "recent":
		return c.executeRecent(), nil
	case "sweep":
		return c.executeSweep(), nil
	default:
		return ephemeral(fmt.Sprintf("Unknown subcommand: %s. Use stats, recent or sweep.", subcommand)), nil
	}
}

func (c *Handler) executeStats() *model.CommandResponse {
	return ephemeral(fmt.Sprintf("Link relay is tracking %d link records.", c.cache.Size()))
}

func (c *Handler) executeRecent() *model.CommandResponse {
	records := c.cache.Recent(recentLinksShown)
	if len(records) == 0 {
		return ephemeral("No links relayed recently.")
	}

	var sb strings.Builder
	sb.WriteString("Recently relayed links:\n")
	now := time.Now()
	for _, record := range records {
		sb.WriteString(fmt.Sprintf("- %s (%s ago)\n", record.URL, now.Sub(record.Timestamp).Round(time.Minute)))
	}
	return ephemeral(sb.String())
}

func (c *Handler) executeSweep() *model.CommandResponse {
	removed := c.cache.Cleanup()
	return ephemeral(fmt.Sprintf("Swept %d expired link records.", removed))
}

func ephemeral(text string) *model.CommandResponse {
	return &model.CommandResponse{
		ResponseType: model.CommandResponseTypeEphemeral,
		Text:         text,
	}
}
