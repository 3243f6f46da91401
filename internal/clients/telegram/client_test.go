package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"adledger-server/internal/observability"
	"adledger-server/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const adminID = "6653616672"

func newTestClient(t *testing.T, channel string) (*Client, *MockBot) {
	t.Helper()
	bot := NewMockBot(gomock.NewController(t))
	client, err := NewFromBot(bot, channel, adminID, observability.NewNopLogger())
	require.NoError(t, err)
	return client, bot
}

func TestNewFromBotRejectsBadAdminID(t *testing.T) {
	t.Parallel()
	_, err := NewFromBot(nil, "@channel", "admin", observability.NewNopLogger())
	assert.ErrorIs(t, err, ErrInvalidChatID)
}

func TestChannelConfig(t *testing.T) {
	t.Parallel()
	assert.Equal(t, tgbotapi.ChatConfig{ChatID: -1002480439556}, channelConfig("-1002480439556"))
	assert.Equal(t, tgbotapi.ChatConfig{SuperGroupUsername: "@adledger"}, channelConfig("@adledger"))
	assert.Equal(t, tgbotapi.ChatConfig{SuperGroupUsername: "@adledger"}, channelConfig(" adledger "))
}

func TestIsMember(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		member   tgbotapi.ChatMember
		err      error
		expected bool
		wantErr  bool
	}{
		{name: "member", member: tgbotapi.ChatMember{Status: "member"}, expected: true},
		{name: "administrator", member: tgbotapi.ChatMember{Status: "administrator"}, expected: true},
		{name: "creator", member: tgbotapi.ChatMember{Status: "creator"}, expected: true},
		{name: "restricted member", member: tgbotapi.ChatMember{Status: "restricted", IsMember: true}, expected: true},
		{name: "restricted non-member", member: tgbotapi.ChatMember{Status: "restricted"}, expected: false},
		{name: "left", member: tgbotapi.ChatMember{Status: "left"}, expected: false},
		{name: "kicked", member: tgbotapi.ChatMember{Status: "kicked"}, expected: false},
		{name: "api error", err: errors.New("Bad Request: user not found"), wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, bot := newTestClient(t, "@adledger")
			bot.EXPECT().GetChatMember(tgbotapi.GetChatMemberConfig{
				ChatConfigWithUser: tgbotapi.ChatConfigWithUser{SuperGroupUsername: "@adledger", UserID: 1001},
			}).Return(tt.member, tt.err)

			ok, err := client.IsMember(context.Background(), "1001")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestIsMemberInvalidID(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, "@adledger")
	_, err := client.IsMember(context.Background(), "not-a-number")
	assert.ErrorIs(t, err, ErrInvalidChatID)
}

func TestIsMemberHonorsContext(t *testing.T) {
	t.Parallel()
	client, bot := newTestClient(t, "@adledger")
	release := make(chan struct{})
	bot.EXPECT().GetChatMember(gomock.Any()).DoAndReturn(func(tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
		<-release
		return tgbotapi.ChatMember{Status: "member"}, nil
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.IsMember(ctx, "1001")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNotifyWithdrawal(t *testing.T) {
	t.Parallel()
	user := store.User{ID: uuid.New(), ExternalID: "1001", DisplayName: "alice"}
	notes := "sent to wallet"
	withdrawal := store.WithdrawalRequest{
		ID:          uuid.New(),
		UserID:      user.ID,
		Amount:      decimal.RequireFromString("2.5"),
		Status:      store.WithdrawalStatusApproved,
		Method:      "wallet",
		Destination: "EQ1",
		AdminNotes:  &notes,
	}

	t.Run("requested goes to admin", func(t *testing.T) {
		t.Parallel()
		client, bot := newTestClient(t, "@adledger")
		bot.EXPECT().Send(gomock.Any()).DoAndReturn(func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
			msg, ok := c.(tgbotapi.MessageConfig)
			require.True(t, ok)
			assert.Equal(t, int64(6653616672), msg.ChatID)
			assert.Contains(t, msg.Text, "alice (1001)")
			assert.Contains(t, msg.Text, "$2.50")
			return tgbotapi.Message{}, nil
		})
		assert.NoError(t, client.NotifyWithdrawalRequested(context.Background(), user, withdrawal))
	})

	t.Run("processed goes to user", func(t *testing.T) {
		t.Parallel()
		client, bot := newTestClient(t, "@adledger")
		bot.EXPECT().Send(gomock.Any()).DoAndReturn(func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
			msg := c.(tgbotapi.MessageConfig)
			assert.Equal(t, int64(1001), msg.ChatID)
			assert.Contains(t, msg.Text, "was approved")
			assert.Contains(t, msg.Text, "sent to wallet")
			return tgbotapi.Message{}, nil
		})
		assert.NoError(t, client.NotifyWithdrawalProcessed(context.Background(), user, withdrawal))
	})

	t.Run("send failure", func(t *testing.T) {
		t.Parallel()
		client, bot := newTestClient(t, "@adledger")
		bot.EXPECT().Send(gomock.Any()).Return(tgbotapi.Message{}, errors.New("Forbidden: bot was blocked by the user"))
		assert.Error(t, client.NotifyWithdrawalProcessed(context.Background(), user, withdrawal))
	})
}
