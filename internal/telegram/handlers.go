package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mixelka/photoreport/internal/report"
)

// handleID handles /id command
func (b *Bot) handleID(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	chatID := msg.Chat.ID
	topicID := getTopicID(msg)

	b.reply(ctx, msg, fmt.Sprintf("%d(%d)", chatID, topicID))
	b.logger.Info("id requested", "chat_id", chatID, "topic_id", topicID)
}

// handleHelp handles /help and /start commands
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	text := `<b>Бот статистики фотографий</b>

Считает фото по чатам и топикам и выгружает отчет в Google Таблицу.

<b>Команды:</b>
/id - показать ID чата и топика
/set_chat_active - включить статистику для этого чата
/set_chat_inactive - отключить статистику для этого чата
/set_topic_name Название - задать название топика
/set_topic_type Тип - задать тип топика для отчета
/set_city Город - задать город чата
/status - показать отслеживаемые чаты
/sync - запустить синхронизацию отчета`

	b.reply(ctx, update.Message, text)
}

// handleSetChatActive handles /set_chat_active command
func (b *Bot) handleSetChatActive(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	chatID := msg.Chat.ID

	added, err := b.db.AddActiveChat(ctx, chatID)
	if err != nil {
		b.logger.Error("failed to activate chat", "chat_id", chatID, "error", err)
		b.reply(ctx, msg, "❌ Ошибка активации чата")
		return
	}

	b.updateTitlesFromMessage(ctx, msg)

	if added {
		b.reply(ctx, msg, fmt.Sprintf("✅ Чат %d добавлен в отслеживаемые (все топики)", chatID))
		b.logger.Info("chat activated", "chat_id", chatID)
	} else {
		b.reply(ctx, msg, fmt.Sprintf("ℹ️ Чат %d уже отслеживается", chatID))
	}
}

// handleSetChatInactive handles /set_chat_inactive command
func (b *Bot) handleSetChatInactive(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	chatID := msg.Chat.ID

	removed, err := b.db.RemoveActiveChat(ctx, chatID)
	if err != nil {
		b.logger.Error("failed to deactivate chat", "chat_id", chatID, "error", err)
		b.reply(ctx, msg, "❌ Ошибка деактивации чата")
		return
	}

	if removed {
		b.reply(ctx, msg, fmt.Sprintf("✅ Чат %d удален из отслеживаемых", chatID))
		b.logger.Info("chat deactivated", "chat_id", chatID)
	} else {
		b.reply(ctx, msg, fmt.Sprintf("ℹ️ Чат %d не был в списке отслеживаемых", chatID))
	}
}

// handleSetTopicName handles /set_topic_name command
// Usage: /set_topic_name Название топика
func (b *Bot) handleSetTopicName(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	chatID := msg.Chat.ID
	topicID := getTopicID(msg)

	name := commandArgument(msg.Text)
	if name == "" {
		b.reply(ctx, msg, "❌ Использование: /set_topic_name Название топика")
		return
	}

	if err := b.db.UpdateTopicTitle(ctx, chatID, topicID, name); err != nil {
		b.logger.Error("failed to set topic name", "chat_id", chatID, "topic_id", topicID, "error", err)
		b.reply(ctx, msg, "❌ Ошибка сохранения названия топика")
		return
	}

	b.reply(ctx, msg, fmt.Sprintf("✅ Название топика установлено: %s", name))
	b.logger.Info("topic name set", "chat_id", chatID, "topic_id", topicID, "name", name)
}

// handleSetTopicType handles /set_topic_type command
// Usage: /set_topic_type Тип (one of the fixed report columns)
func (b *Bot) handleSetTopicType(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	chatID := msg.Chat.ID
	topicID := getTopicID(msg)

	topicType := commandArgument(msg.Text)
	if topicType == "" || !report.ValidTopicType(topicType) {
		b.reply(ctx, msg, fmt.Sprintf(
			"❌ Использование: /set_topic_type Тип\nДоступные типы:\n%s",
			strings.Join(report.TopicTypes, "\n"),
		))
		return
	}

	if _, err := b.db.SetTopicType(ctx, chatID, topicID, topicType); err != nil {
		b.logger.Error("failed to set topic type", "chat_id", chatID, "topic_id", topicID, "error", err)
		b.reply(ctx, msg, "❌ Ошибка сохранения типа топика")
		return
	}

	b.reply(ctx, msg, fmt.Sprintf("✅ Тип топика установлен: %s", topicType))
	b.logger.Info("topic type set", "chat_id", chatID, "topic_id", topicID, "type", topicType)
}

// handleSetCity handles /set_city command
// Usage: /set_city Город
func (b *Bot) handleSetCity(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	chatID := msg.Chat.ID

	city := commandArgument(msg.Text)
	if city == "" {
		b.reply(ctx, msg, "❌ Использование: /set_city Город")
		return
	}

	ok, err := b.db.SetChatCity(ctx, chatID, city)
	if err != nil {
		b.logger.Error("failed to set city", "chat_id", chatID, "error", err)
		b.reply(ctx, msg, "❌ Ошибка сохранения города")
		return
	}

	if !ok {
		b.reply(ctx, msg, "❌ Чат не отслеживается. Сначала используйте /set_chat_active")
		return
	}

	b.reply(ctx, msg, fmt.Sprintf("✅ Город установлен: %s", city))
	b.logger.Info("city set", "chat_id", chatID, "city", city)
}

// handleStatus handles /status command
func (b *Bot) handleStatus(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message

	chats, err := b.db.GetAllActiveChats(ctx)
	if err != nil {
		b.logger.Error("failed to get active chats", "error", err)
		b.reply(ctx, msg, "❌ Ошибка получения списка чатов")
		return
	}

	if len(chats) == 0 {
		b.reply(ctx, msg, "Нет отслеживаемых чатов")
		return
	}

	var sb strings.Builder
	sb.WriteString("<b>Отслеживаемые чаты:</b>\n\n")
	for _, chat := range chats {
		name := b.db.GetDisplayName(ctx, chat.ChatID, 0)
		sb.WriteString(fmt.Sprintf("%s\n   Город: %s\n   С: %s\n", name, chat.City, chat.CreatedAt))

		topics, err := b.db.GetTopicsForChat(ctx, chat.ChatID)
		if err != nil {
			b.logger.Error("failed to get topics", "chat_id", chat.ChatID, "error", err)
			continue
		}
		for _, topic := range topics {
			sb.WriteString(fmt.Sprintf("   • %s — %s\n", topic.Title, topic.Type))
		}
		sb.WriteString("\n")
	}

	b.reply(ctx, msg, sb.String())
}

// handleSync handles /sync command - forces a report sync outside the
// timer schedule.
func (b *Bot) handleSync(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message

	if err := b.syncer.ForceSync(ctx); err != nil {
		b.logger.Error("forced sync failed", "error", err)
		b.reply(ctx, msg, fmt.Sprintf("❌ Ошибка синхронизации: %v", err))
		return
	}

	b.reply(ctx, msg, "✅ Синхронизация выполнена")
}
