package telegram

//go:generate go run go.uber.org/mock/mockgen@latest -source=client.go -destination=mocks_test.go -package=telegram

import (
	"adledger-server/internal/config"
	"adledger-server/internal/observability"
	"adledger-server/internal/store"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrInvalidChatID is returned when an identity is not a numeric Telegram id
var ErrInvalidChatID = errors.New("invalid telegram chat id")

// Bot is the subset of the Bot API the client calls
type Bot interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client checks channel membership and sends operator and user notifications
type Client struct {
	bot         Bot
	channel     tgbotapi.ChatConfig
	adminChatID int64
	logger      *observability.Logger
}

// NewClient connects to the Bot API. An empty token returns a nil client.
func NewClient(cfg config.TelegramConfig, adminID string, logger *observability.Logger) (*Client, error) {
	if cfg.BotToken == "" {
		logger.Info(context.Background(), "Telegram bot token not set, skipping client initialization")
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}

	logger.Info(context.Background(), "successfully connected to Telegram",
		observability.Field{Key: "bot", Value: bot.Self.UserName},
	)

	return NewFromBot(bot, cfg.Channel, adminID, logger)
}

// NewFromBot wraps an existing bot
func NewFromBot(bot Bot, channel, adminID string, logger *observability.Logger) (*Client, error) {
	adminChatID, err := parseChatID(adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse admin telegram id: %w", err)
	}

	return &Client{
		bot:         bot,
		channel:     channelConfig(channel),
		adminChatID: adminChatID,
		logger:      logger,
	}, nil
}

// channelConfig accepts "@name" or a numeric chat id
func channelConfig(channel string) tgbotapi.ChatConfig {
	channel = strings.TrimSpace(channel)
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return tgbotapi.ChatConfig{ChatID: id}
	}
	if channel != "" && !strings.HasPrefix(channel, "@") {
		channel = "@" + channel
	}
	return tgbotapi.ChatConfig{SuperGroupUsername: channel}
}

func parseChatID(id string) (int64, error) {
	chatID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChatID, id)
	}
	return chatID, nil
}

// IsMember reports whether externalID has joined the required channel
func (c *Client) IsMember(ctx context.Context, externalID string) (bool, error) {
	userID, err := parseChatID(externalID)
	if err != nil {
		return false, err
	}

	member, err := call(ctx, func() (tgbotapi.ChatMember, error) {
		return c.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID:             c.channel.ChatID,
				SuperGroupUsername: c.channel.SuperGroupUsername,
				UserID:             userID,
			},
		})
	})
	if err != nil {
		return false, fmt.Errorf("failed to get chat member: %w", err)
	}

	switch member.Status {
	case "creator", "administrator", "member":
		return true, nil
	case "restricted":
		return member.IsMember, nil
	default:
		return false, nil
	}
}

// NotifyWithdrawalRequested tells the admin a withdrawal is waiting for review
func (c *Client) NotifyWithdrawalRequested(ctx context.Context, user store.User, withdrawal store.WithdrawalRequest) error {
	text := fmt.Sprintf("New withdrawal request\n\nUser: %s (%s)\nAmount: $%s\nMethod: %s\nDestination: %s\nRequest: %s",
		user.DisplayName, user.ExternalID,
		withdrawal.Amount.StringFixed(2),
		withdrawal.Method, withdrawal.Destination,
		withdrawal.ID,
	)
	return c.send(ctx, c.adminChatID, text)
}

// NotifyWithdrawalProcessed tells a user their withdrawal was approved or rejected
func (c *Client) NotifyWithdrawalProcessed(ctx context.Context, user store.User, withdrawal store.WithdrawalRequest) error {
	chatID, err := parseChatID(user.ExternalID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("Your withdrawal of $%s was %s.", withdrawal.Amount.StringFixed(2), withdrawal.Status)
	if withdrawal.AdminNotes != nil && *withdrawal.AdminNotes != "" {
		text += "\n\nNote: " + *withdrawal.AdminNotes
	}
	return c.send(ctx, chatID, text)
}

func (c *Client) send(ctx context.Context, chatID int64, text string) error {
	_, err := call(ctx, func() (tgbotapi.Message, error) {
		return c.bot.Send(tgbotapi.NewMessage(chatID, text))
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// call runs fn but returns as soon as ctx is done. The Bot API client has no
// context support, so an abandoned call finishes in the background.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.value, r.err
	}
}
