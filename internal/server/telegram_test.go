package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghostnote/confession-relay/internal/biz/domain"
	"github.com/ghostnote/confession-relay/internal/infra/telegram"
)

const (
	botID          = int64(555)
	moderationChat = int64(-1001)
)

type mockRelay struct {
	mu        sync.Mutex
	messages  []*domain.InboundMessage
	decisions []*domain.DecisionEvent
	dismissed []string
}

func (m *mockRelay) HandleMessage(ctx context.Context, msg *domain.InboundMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockRelay) HandleDecision(ctx context.Context, event *domain.DecisionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, event)
	return nil
}

func (m *mockRelay) DismissEvent(ctx context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dismissed = append(m.dismissed, eventID)
	return nil
}

type mockSource struct {
	handler telegram.UpdateHandler
	updates []*telegram.Update
}

func (m *mockSource) OnUpdate(handler telegram.UpdateHandler) { m.handler = handler }

func (m *mockSource) Start(ctx context.Context) error {
	for _, u := range m.updates {
		m.handler(u)
	}
	return nil
}

func (m *mockSource) Stop() {}

func newTestServer(updates ...*telegram.Update) (*TelegramServer, *mockRelay) {
	relay := &mockRelay{}
	src := &mockSource{updates: updates}
	return NewTelegramServer(src, relay, Config{BotID: botID, ModerationChatID: moderationChat}, nil), relay
}

func privateUpdate(id int64, text string) *telegram.Update {
	return &telegram.Update{
		UpdateID: id,
		Message: &telegram.Message{
			MessageID: id,
			From:      &telegram.User{ID: 42, LanguageCode: "uk"},
			Chat:      telegram.Chat{ID: 42, Type: "private"},
			Text:      text,
		},
	}
}

func TestServer_DispatchesMessagesAndDecisions(t *testing.T) {
	cb := &telegram.Update{
		UpdateID: 2,
		CallbackQuery: &telegram.CallbackQuery{
			ID:   "cb-1",
			From: telegram.User{ID: 7},
			Data: "approve_42_uk_1700000000",
			Message: &telegram.Message{
				MessageID: 10,
				Chat:      telegram.Chat{ID: moderationChat, Type: "supergroup"},
				Text:      "📝 New confession for review:\n\nhi there\n\n👤 LANGUAGE: UK",
			},
		},
	}
	s, relay := newTestServer(privateUpdate(1, "hello world"), cb)
	require.NoError(t, s.Start(context.Background()))

	require.Len(t, relay.messages, 1)
	assert.Equal(t, "hello world", relay.messages[0].Text)
	assert.Equal(t, "uk", relay.messages[0].LanguageHint)

	require.Len(t, relay.decisions, 1)
	assert.Empty(t, relay.dismissed)
	assert.Equal(t, "cb-1", relay.decisions[0].EventID)
	assert.Equal(t, int64(7), relay.decisions[0].ModeratorID)
	assert.Equal(t, domain.MessageHandle{ChatID: moderationChat, MessageID: 10}, relay.decisions[0].Origin)
}

func TestServer_DeduplicatesUpdates(t *testing.T) {
	s, relay := newTestServer(privateUpdate(1, "hello world"), privateUpdate(1, "hello world"))
	require.NoError(t, s.Start(context.Background()))
	assert.Len(t, relay.messages, 1)
}

func TestServer_IgnoresCallbacksOutsideModerationChat(t *testing.T) {
	cb := &telegram.Update{
		UpdateID: 3,
		CallbackQuery: &telegram.CallbackQuery{
			ID:      "cb-2",
			Data:    "approve_42_en_1",
			Message: &telegram.Message{MessageID: 1, Chat: telegram.Chat{ID: -999, Type: "group"}},
		},
	}
	stale := &telegram.Update{
		UpdateID: 4,
		CallbackQuery: &telegram.CallbackQuery{
			ID:   "cb-3",
			Data: "approve_42_en_1",
		},
	}
	s, relay := newTestServer(cb, stale)
	require.NoError(t, s.Start(context.Background()))
	assert.Empty(t, relay.decisions)
	assert.Equal(t, []string{"cb-2", "cb-3"}, relay.dismissed)
}

func TestMarkSeen_Expires(t *testing.T) {
	s, _ := newTestServer()
	now := time.Unix(1700000000, 0)
	s.now = func() time.Time { return now }

	assert.True(t, s.markSeen(1))
	assert.False(t, s.markSeen(1))

	now = now.Add(6 * time.Minute)
	assert.True(t, s.markSeen(1))
}

func TestToInboundMessage(t *testing.T) {
	cmd := []telegram.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}

	tests := []struct {
		name  string
		msg   *telegram.Message
		check func(t *testing.T, m *domain.InboundMessage)
		isNil bool
	}{
		{
			name: "photo uses caption and keeps sizes in order",
			msg: &telegram.Message{
				From:    &telegram.User{ID: 1},
				Chat:    telegram.Chat{ID: 1, Type: "private"},
				Caption: "look at this",
				Photo:   []telegram.PhotoSize{{FileID: "s"}, {FileID: "m"}, {FileID: "l"}},
			},
			check: func(t *testing.T, m *domain.InboundMessage) {
				assert.Equal(t, "look at this", m.Text)
				assert.Equal(t, []string{"s", "m", "l"}, m.PhotoFileIDs)
				assert.Equal(t, "l", m.LargestPhoto())
			},
		},
		{
			name: "start command",
			msg: &telegram.Message{
				From:     &telegram.User{ID: 1},
				Chat:     telegram.Chat{ID: 1, Type: "private"},
				Text:     "/start",
				Entities: cmd,
			},
			check: func(t *testing.T, m *domain.InboundMessage) {
				assert.True(t, m.IsCommand)
				assert.True(t, m.AddressesBot)
			},
		},
		{
			name: "group reply to the bot addresses it",
			msg: &telegram.Message{
				From:           &telegram.User{ID: 1},
				Chat:           telegram.Chat{ID: -5, Type: "group"},
				Text:           "hey bot",
				ReplyToMessage: &telegram.Message{From: &telegram.User{ID: botID, IsBot: true}},
			},
			check: func(t *testing.T, m *domain.InboundMessage) {
				assert.Equal(t, domain.ChatTypeGroup, m.ChatType)
				assert.True(t, m.AddressesBot)
			},
		},
		{
			name: "group reply to someone else",
			msg: &telegram.Message{
				From:           &telegram.User{ID: 1},
				Chat:           telegram.Chat{ID: -5, Type: "supergroup"},
				Text:           "agreed",
				ReplyToMessage: &telegram.Message{From: &telegram.User{ID: 2}},
			},
			check: func(t *testing.T, m *domain.InboundMessage) {
				assert.False(t, m.AddressesBot)
			},
		},
		{
			name:  "channel post without sender",
			msg:   &telegram.Message{Chat: telegram.Chat{ID: -7, Type: "channel"}, Text: "post"},
			isNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToInboundMessage(&telegram.Update{UpdateID: 1, Message: tt.msg}, botID)
			if tt.isNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			tt.check(t, got)
		})
	}
}

func TestToDecisionEvent_Photo(t *testing.T) {
	event := ToDecisionEvent(&telegram.CallbackQuery{
		ID:   "cb",
		Data: "spoiler_1_en_2",
		Message: &telegram.Message{
			MessageID: 3,
			Chat:      telegram.Chat{ID: moderationChat},
			Caption:   "📝 New confession for review:\n\n[Photo only]\n\n👤 LANGUAGE: EN",
			Photo:     []telegram.PhotoSize{{FileID: "small"}, {FileID: "big"}},
		},
	})
	require.NotNil(t, event)
	assert.True(t, event.OriginIsPhoto)
	assert.Equal(t, "big", event.OriginPhoto)
	assert.Contains(t, event.OriginText, "[Photo only]")

	assert.Nil(t, ToDecisionEvent(&telegram.CallbackQuery{ID: "old"}))
}
