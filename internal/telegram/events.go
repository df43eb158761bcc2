package telegram

import (
	"context"
	"errors"

	"github.com/go-telegram/bot/models"

	"github.com/mixelka/photoreport/internal/database"
)

// updateTitlesFromMessage opportunistically refreshes chat and topic
// titles from whatever the message carries.
func (b *Bot) updateTitlesFromMessage(ctx context.Context, msg *models.Message) {
	chatID := msg.Chat.ID
	topicID := getTopicID(msg)

	if msg.Chat.Title != "" {
		if err := b.db.UpdateChatTitle(ctx, chatID, msg.Chat.Title); err != nil {
			b.logger.Error("failed to update chat title", "chat_id", chatID, "error", err)
		}
	}

	if msg.ForumTopicCreated != nil {
		if err := b.db.UpdateTopicTitle(ctx, chatID, topicID, msg.ForumTopicCreated.Name); err != nil {
			b.logger.Error("failed to update topic title", "chat_id", chatID, "topic_id", topicID, "error", err)
		} else {
			b.logger.Info("topic created", "chat_id", chatID, "topic_id", topicID, "name", msg.ForumTopicCreated.Name)
		}
	}

	if msg.ForumTopicEdited != nil && msg.ForumTopicEdited.Name != "" {
		if err := b.db.UpdateTopicTitle(ctx, chatID, topicID, msg.ForumTopicEdited.Name); err != nil {
			b.logger.Error("failed to update topic title", "chat_id", chatID, "topic_id", topicID, "error", err)
		} else {
			b.logger.Info("topic renamed", "chat_id", chatID, "topic_id", topicID, "name", msg.ForumTopicEdited.Name)
		}
	}

	// Topics created before the bot joined never produced a creation
	// event; replies inside them still carry the creation service
	// message, so backfill the title from there.
	if topicID != 0 && msg.ReplyToMessage != nil && msg.ReplyToMessage.ForumTopicCreated != nil {
		name := msg.ReplyToMessage.ForumTopicCreated.Name
		if err := b.db.UpdateTopicTitle(ctx, chatID, topicID, name); err != nil {
			b.logger.Error("failed to backfill topic title", "chat_id", chatID, "topic_id", topicID, "error", err)
		}
	}
}

// handlePhoto counts a photo message in an active chat and records the
// message->topic index entry for later reaction attribution.
func (b *Bot) handlePhoto(ctx context.Context, msg *models.Message) {
	chatID := msg.Chat.ID
	topicID := getTopicID(msg)

	b.updateTitlesFromMessage(ctx, msg)

	active, err := b.db.IsChatActive(ctx, chatID)
	if err != nil {
		b.logger.Error("failed to check chat activity", "chat_id", chatID, "error", err)
		return
	}
	if !active {
		return
	}

	// Every photo of an album arrives as its own message, so both album
	// modes currently add 1 per message.
	count := 1
	if !b.config.CountEachPhotoInAlbum && msg.MediaGroupID != "" {
		count = 1
	}

	if err := b.db.IncrementImageCount(ctx, chatID, topicID, count); err != nil {
		b.logger.Error("failed to increment image count", "chat_id", chatID, "topic_id", topicID, "error", err)
		return
	}

	if err := b.db.SaveMessageTopic(ctx, chatID, msg.ID, topicID); err != nil {
		b.logger.Error("failed to save message topic", "chat_id", chatID, "message_id", msg.ID, "error", err)
	}

	b.logger.Info("photo counted", "target", b.db.GetDisplayName(ctx, chatID, topicID))
}

// handleReaction translates a reaction change into signed counter deltas.
// Reaction updates carry a message id but no topic id, so the topic is
// resolved through the message index, falling back to General when the
// entry has already been cleaned up.
func (b *Bot) handleReaction(ctx context.Context, reaction *models.MessageReactionUpdated) {
	chatID := reaction.Chat.ID

	active, err := b.db.IsChatActive(ctx, chatID)
	if err != nil {
		b.logger.Error("failed to check chat activity", "chat_id", chatID, "error", err)
		return
	}
	if !active {
		return
	}

	topicID, err := b.db.GetTopicByMessage(ctx, chatID, reaction.MessageID)
	if errors.Is(err, database.ErrNotFound) {
		topicID = 0
		b.logger.Debug("message topic unknown, attributing reaction to General",
			"chat_id", chatID, "message_id", reaction.MessageID)
	} else if err != nil {
		b.logger.Error("failed to resolve message topic", "chat_id", chatID, "message_id", reaction.MessageID, "error", err)
		return
	}

	positiveDelta, negativeDelta := reactionDeltas(reaction.OldReaction, reaction.NewReaction)
	if positiveDelta == 0 && negativeDelta == 0 {
		return
	}

	if err := b.db.UpdateReactionCount(ctx, chatID, topicID, positiveDelta, negativeDelta); err != nil {
		b.logger.Error("failed to update reaction count", "chat_id", chatID, "topic_id", topicID, "error", err)
		return
	}

	b.logger.Info("reaction counted",
		"target", b.db.GetDisplayName(ctx, chatID, topicID),
		"positive_delta", positiveDelta,
		"negative_delta", negativeDelta,
	)
}
