package telegram

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mixelka/photoreport/internal/config"
	"github.com/mixelka/photoreport/internal/database"
)

// Syncer triggers an out-of-schedule report sync. Implemented by the
// scheduler.
type Syncer interface {
	ForceSync(ctx context.Context) error
}

// Bot represents the Telegram bot
type Bot struct {
	bot    *bot.Bot
	db     *database.DB
	syncer Syncer
	logger *slog.Logger
	config *config.Config
}

// BotDeps dependencies for creating a bot
type BotDeps struct {
	Config *config.Config
	DB     *database.DB
	Syncer Syncer
	Logger *slog.Logger
}

// NewBot creates a new Telegram bot
func NewBot(deps BotDeps) (*Bot, error) {
	b := &Bot{
		db:     deps.DB,
		syncer: deps.Syncer,
		logger: deps.Logger.With("component", "telegram_bot"),
		config: deps.Config,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
		// message_reaction updates are not delivered unless asked for
		bot.WithAllowedUpdates(bot.AllowedUpdates{"message", "message_reaction"}),
	}

	tgBot, err := bot.New(deps.Config.TelegramToken, opts...)
	if err != nil {
		return nil, err
	}

	b.bot = tgBot
	b.registerHandlers()

	return b, nil
}

// registerHandlers registers command handlers
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/id", bot.MatchTypePrefix, b.handleID)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/set_chat_active", bot.MatchTypePrefix, b.handleSetChatActive)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/set_chat_inactive", bot.MatchTypePrefix, b.handleSetChatInactive)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/set_topic_name", bot.MatchTypePrefix, b.handleSetTopicName)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/set_topic_type", bot.MatchTypePrefix, b.handleSetTopicType)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/set_city", bot.MatchTypePrefix, b.handleSetCity)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypePrefix, b.handleStatus)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/sync", bot.MatchTypePrefix, b.handleSync)
}

// setupCommands publishes the bot command menu
func (b *Bot) setupCommands(ctx context.Context) {
	_, err := b.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: []models.BotCommand{
			{Command: "id", Description: "Показать ID чата и топика"},
			{Command: "set_chat_active", Description: "Активировать отслеживание чата"},
			{Command: "set_chat_inactive", Description: "Деактивировать отслеживание чата"},
			{Command: "set_topic_name", Description: "Задать название топика"},
			{Command: "set_topic_type", Description: "Задать тип топика"},
			{Command: "set_city", Description: "Задать город чата"},
			{Command: "status", Description: "Показать отслеживаемые чаты"},
			{Command: "sync", Description: "Запустить синхронизацию отчета"},
		},
	})
	if err != nil {
		b.logger.Warn("failed to set bot commands", "error", err)
	}
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) {
	b.setupCommands(ctx)
	b.logger.Info("starting telegram bot")
	b.bot.Start(ctx)
}

// defaultHandler dispatches non-command updates: reactions, forum topic
// events and photo messages.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.MessageReaction != nil {
		b.handleReaction(ctx, update.MessageReaction)
		return
	}

	msg := update.Message
	if msg == nil {
		return
	}

	if msg.ForumTopicCreated != nil || msg.ForumTopicEdited != nil {
		b.updateTitlesFromMessage(ctx, msg)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	if msg.Text != "" && msg.Text[0] == '/' {
		b.logger.Debug("unknown command", "text", msg.Text)
	}
}
