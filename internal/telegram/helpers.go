package telegram

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// getTopicID extracts the forum topic id from a message. Plain groups
// and the General topic both map to 0.
func getTopicID(msg *models.Message) int {
	return msg.MessageThreadID
}

// commandArgument returns the text after the command itself, so
// "/set_city Москва" yields "Москва". Handles the /cmd@botname form.
func commandArgument(text string) string {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// sendMessage sends a message to a topic
func (b *Bot) sendMessage(ctx context.Context, chatID int64, topicID int, text string) (*models.Message, error) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}

	if topicID != 0 {
		params.MessageThreadID = topicID
	}

	return b.bot.SendMessage(ctx, params)
}

// reply answers in the same chat and topic as the triggering message.
func (b *Bot) reply(ctx context.Context, msg *models.Message, text string) {
	if _, err := b.sendMessage(ctx, msg.Chat.ID, getTopicID(msg), text); err != nil {
		b.logger.Error("failed to send reply", "chat_id", msg.Chat.ID, "error", err)
	}
}
