package main

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/mattermost/mattermost/server/public/plugin"

	"github.com/relaybot/mattermost-plugin-link-relay/server/store/kvstore"
)

// RelayProcessor drives the per-message pipeline: extract, resolve, transform,
// duplicate-check, then either remove the repost or move the link to the
// destination channel. Each message is processed on its own goroutine; the
// only shared state is the link cache, which synchronizes internally.
type RelayProcessor struct {
	api          plugin.API
	extractor    *LinkExtractor
	resolver     *RedirectResolver
	cache        *LinkCache
	replyService *DuplicateReplyService
	embedChecker *EmbedHealthChecker
	botID        string

	// rngMu guards rng; rand.Rand is not safe for concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// relayCandidate is one allow-listed link of a message after resolution.
type relayCandidate struct {
	class       Classification
	raw         string
	transformed string
}

// NewRelayProcessor creates a new relay processor
func NewRelayProcessor(
	api plugin.API,
	extractor *LinkExtractor,
	resolver *RedirectResolver,
	cache *LinkCache,
	replyService *DuplicateReplyService,
	embedChecker *EmbedHealthChecker,
	botID string,
) *RelayProcessor {
	return &RelayProcessor{
		api:          api,
		extractor:    extractor,
		resolver:     resolver,
		cache:        cache,
		replyService: replyService,
		embedChecker: embedChecker,
		botID:        botID,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ProcessPost handles one incoming message end to end. Any panic during the
// pipeline is contained to this message: the message is left unmodified and
// processing of other messages continues.
func (r *RelayProcessor) ProcessPost(post *model.Post, config *configuration) {
	defer func() {
		if rec := recover(); rec != nil {
			r.api.LogError("Recovered from panic while processing message", "postID", post.Id, "panic", rec)
		}
	}()

	if post.UserId == r.botID || strings.TrimSpace(post.Message) == "" {
		return
	}
	if post.ChannelId != config.SourceChannelID && post.ChannelId != config.DestinationChannelID {
		return
	}

	links := r.extractor.ExtractLinks(post.Message)
	if len(links) == 0 {
		return
	}

	// Resolve every link; media and non-allow-listed links fall out here.
	var candidates []relayCandidate
	for _, link := range links {
		class, transformed := r.resolver.ResolveAndTransform(link.Raw)
		switch class {
		case ClassRewritten, ClassUnchanged:
			candidates = append(candidates, relayCandidate{class: class, raw: link.Raw, transformed: transformed})
		case ClassMedia:
			r.api.LogDebug("Skipping media link", "url", link.Raw)
		case ClassNotAllowed:
			r.api.LogDebug("Skipping non-allow-listed link", "url", link.Raw)
		}
	}
	if len(candidates) == 0 {
		return
	}

	// The first candidate is the relayed primary; the rest are recorded for
	// duplicate detection but never posted separately.
	primary := candidates[0]
	secondaries := candidates[1:]

	origNorm := NormalizeLink(primary.raw)
	transNorm := NormalizeLink(primary.transformed)

	isDuplicate, record := r.cache.CheckAndRecord(origNorm, transNorm, post.Id, post.UserId)
	if isDuplicate {
		r.handleDuplicate(post, record, config)
		return
	}

	// Already in the destination channel in its final form: nothing to move
	// and nothing to rewrite, so the post stays as the user wrote it.
	if post.ChannelId == config.DestinationChannelID && primary.class == ClassUnchanged {
		r.recordSecondaries(secondaries, post.Id, post.UserId)
		return
	}

	r.relay(post, primary, secondaries, origNorm, transNorm, config)
}

// recordSecondaries stores a message's remaining links so a later solo repost
// of any of them is caught as a duplicate.
func (r *RelayProcessor) recordSecondaries(secondaries []relayCandidate, messageID, authorID string) {
	for _, candidate := range secondaries {
		r.cache.Record(NormalizeLink(candidate.raw), NormalizeLink(candidate.transformed), messageID, authorID)
	}
}

// handleDuplicate removes the reposted message and, when enabled, replies under
// the message that first posted the link.
func (r *RelayProcessor) handleDuplicate(post *model.Post, record *kvstore.LinkRecord, config *configuration) {
	r.api.LogInfo("Removing duplicate link", "postID", post.Id, "originalMessageID", record.MessageID)

	if appErr := r.api.DeletePost(post.Id); appErr != nil {
		if isPermissionError(appErr) {
			logPermissionFailure(r.api, "deleting duplicate message", config.DestinationChannelID, appErr)
		} else {
			r.api.LogError("Failed to delete duplicate message", "postID", post.Id, "error", appErr.Error())
		}
		return
	}

	if !config.EnableDuplicateReplies {
		return
	}

	err := r.replyService.ReplyToOriginal(record.MessageID, post.UserId, r.pickRemark())
	switch {
	case err == ErrOriginalGone:
		r.api.LogDebug("Original message for duplicate no longer exists", "originalMessageID", record.MessageID)
	case err != nil:
		r.api.LogWarn("Failed to reply to original message", "originalMessageID", record.MessageID, "error", err.Error())
	}
}

// relay posts the composed message to the destination channel and removes the
// source message. When source and destination are the same channel the
// original is replaced in place, delete first so the channel never shows the
// link twice.
func (r *RelayProcessor) relay(post *model.Post, primary relayCandidate, secondaries []relayCandidate, origNorm, transNorm string, config *configuration) {
	inPlace := post.ChannelId == config.DestinationChannelID

	relayed := &model.Post{
		UserId:    r.botID,
		ChannelId: config.DestinationChannelID,
		Message:   r.composeMessage(r.authorMention(post.UserId), post.Message, primary.transformed),
	}

	if inPlace {
		if appErr := r.api.DeletePost(post.Id); appErr != nil {
			r.cache.Forget(origNorm, transNorm)
			if isPermissionError(appErr) {
				logPermissionFailure(r.api, "deleting source message", config.DestinationChannelID, appErr)
			} else {
				r.api.LogError("Failed to delete source message", "postID", post.Id, "error", appErr.Error())
			}
			return
		}
	}

	created, appErr := r.api.CreatePost(relayed)
	if appErr != nil {
		// Without a relayed copy the link was never moved; drop the record so
		// a retry by the author is not flagged as a repost.
		r.cache.Forget(origNorm, transNorm)
		if isPermissionError(appErr) {
			logPermissionFailure(r.api, "posting to destination channel", config.DestinationChannelID, appErr)
		} else {
			r.api.LogError("Failed to post relayed link", "url", primary.transformed, "error", appErr.Error())
		}
		return
	}

	r.cache.Rebind(created.Id, origNorm, transNorm)
	r.recordSecondaries(secondaries, created.Id, post.UserId)

	if !inPlace {
		if appErr := r.api.DeletePost(post.Id); appErr != nil {
			// The relayed copy stands either way.
			if isPermissionError(appErr) {
				logPermissionFailure(r.api, "deleting source message", config.DestinationChannelID, appErr)
			} else {
				r.api.LogError("Failed to delete source message", "postID", post.Id, "error", appErr.Error())
			}
		}
	}

	r.api.LogInfo("Relayed link", "url", primary.transformed, "relayedPostID", created.Id)

	if r.embedChecker.NeedsCheck(primary.transformed) {
		delay := time.Duration(config.EmbedCheckDelaySeconds) * time.Second
		go r.embedChecker.CheckAndCorrect(created.Id, delay)
	}
}

// composeMessage builds the outgoing message: the source author's mention and
// any mentioned users first, then the residual user text, then the rewritten
// link on its own line so the embed renders.
func (r *RelayProcessor) composeMessage(authorMention, original, transformed string) string {
	cleaned, mentions := r.extractor.ExtractMentions(original)
	residual := r.extractor.RemoveLinks(cleaned)

	header := authorMention
	if len(mentions) > 0 {
		if header != "" {
			header += " "
		}
		header += strings.Join(mentions, " ")
	}
	if header != "" {
		header += ":"
	}

	line := header
	if residual != "" {
		if line != "" {
			line += " "
		}
		line += residual
	}
	if line == "" {
		return transformed
	}
	return line + "\n" + transformed
}

// authorMention resolves the source author to an @-mention. An empty string
// means the author could not be looked up and attribution is omitted.
func (r *RelayProcessor) authorMention(userID string) string {
	user, appErr := r.api.GetUser(userID)
	if appErr != nil || user == nil {
		r.api.LogWarn("Failed to look up source author for attribution", "userID", userID)
		return ""
	}
	return "@" + user.Username
}

func (r *RelayProcessor) pickRemark() string {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return PickRemark(r.rng)
}
