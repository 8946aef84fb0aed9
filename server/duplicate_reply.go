package main

import (
	"fmt"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/mattermost/mattermost/server/public/plugin"
	"github.com/pkg/errors"
)

// DuplicateReplyService creates the bot's reply under the message that first
// posted a link when someone reposts it.
type DuplicateReplyService struct {
	api   plugin.API
	botID string
}

// NewDuplicateReplyService creates a new duplicate reply service
func NewDuplicateReplyService(api plugin.API, botID string) *DuplicateReplyService {
	return &DuplicateReplyService{
		api:   api,
		botID: botID,
	}
}

// ErrOriginalGone signals that the message that first posted the link no
// longer exists, in which case no reply is made.
var ErrOriginalGone = errors.New("original message no longer exists")

// ReplyToOriginal posts a thread reply under the original message, mentioning
// the reposter and appending the given remark.
func (d *DuplicateReplyService) ReplyToOriginal(originalMessageID, reposterUserID, remark string) error {
	original, appErr := d.api.GetPost(originalMessageID)
	if appErr != nil || original == nil {
		return ErrOriginalGone
	}

	// If the original is itself a reply, attach to its thread root.
	rootID := original.Id
	if original.RootId != "" {
		rootID = original.RootId
	}

	reply := &model.Post{
		UserId:    d.botID,
		ChannelId: original.ChannelId,
		RootId:    rootID,
		Message:   fmt.Sprintf("%s %s", d.mentionFor(reposterUserID), remark),
		CreateAt:  model.GetMillis(),
	}

	if _, appErr := d.api.CreatePost(reply); appErr != nil {
		return errors.Wrap(appErr, "failed to create duplicate reply")
	}

	return nil
}

// mentionFor resolves a user ID to an @-mention, falling back to a neutral
// label when the user cannot be looked up.
func (d *DuplicateReplyService) mentionFor(userID string) string {
	user, appErr := d.api.GetUser(userID)
	if appErr != nil || user == nil {
		return "someone"
	}
	return "@" + user.Username
}
