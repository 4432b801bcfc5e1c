package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghostnote/confession-relay/internal/biz/domain"
	"github.com/ghostnote/confession-relay/internal/biz/repo"
	"github.com/ghostnote/confession-relay/internal/infra/telegram"
)

// mockTelegramAPI records Bot API requests
type mockTelegramAPI struct {
	messages []telegram.SendMessageRequest
	photos   []telegram.SendPhotoRequest
	texts    []telegram.EditMessageTextRequest
	captions []telegram.EditMessageCaptionRequest
	answers  []telegram.AnswerCallbackQueryRequest
	editErr  error
}

func (m *mockTelegramAPI) SendMessage(ctx context.Context, req telegram.SendMessageRequest) (*telegram.Message, error) {
	m.messages = append(m.messages, req)
	return &telegram.Message{MessageID: int64(len(m.messages)), Chat: telegram.Chat{ID: req.ChatID}}, nil
}

func (m *mockTelegramAPI) SendPhoto(ctx context.Context, req telegram.SendPhotoRequest) (*telegram.Message, error) {
	m.photos = append(m.photos, req)
	return &telegram.Message{MessageID: 100 + int64(len(m.photos)), Chat: telegram.Chat{ID: req.ChatID}}, nil
}

func (m *mockTelegramAPI) EditMessageText(ctx context.Context, req telegram.EditMessageTextRequest) error {
	m.texts = append(m.texts, req)
	return m.editErr
}

func (m *mockTelegramAPI) EditMessageCaption(ctx context.Context, req telegram.EditMessageCaptionRequest) error {
	m.captions = append(m.captions, req)
	return m.editErr
}

func (m *mockTelegramAPI) AnswerCallbackQuery(ctx context.Context, req telegram.AnswerCallbackQueryRequest) error {
	m.answers = append(m.answers, req)
	return nil
}

func TestTelegramRepo_SendTextWithButtons(t *testing.T) {
	api := &mockTelegramAPI{}
	gw := NewTelegramRepo(api)

	handle, err := gw.SendText(context.Background(), -100, "review me", repo.SendOptions{
		Buttons: [][]domain.Button{
			{{Label: "✅ Approve", Data: "approve_1_en_2"}, {Label: "❌ Reject", Data: "reject_1_en_2"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MessageHandle{ChatID: -100, MessageID: 1}, handle)

	require.Len(t, api.messages, 1)
	req := api.messages[0]
	require.NotNil(t, req.ReplyMarkup)
	require.Len(t, req.ReplyMarkup.InlineKeyboard, 1)
	assert.Equal(t, "reject_1_en_2", req.ReplyMarkup.InlineKeyboard[0][1].CallbackData)
	assert.Empty(t, req.ParseMode)
}

func TestTelegramRepo_SendTextPlain(t *testing.T) {
	api := &mockTelegramAPI{}
	gw := NewTelegramRepo(api)

	_, err := gw.SendText(context.Background(), 5, "hi", repo.SendOptions{ParseMode: repo.ParseModeMarkdownV2})
	require.NoError(t, err)
	assert.Nil(t, api.messages[0].ReplyMarkup)
	assert.Equal(t, "MarkdownV2", api.messages[0].ParseMode)
}

func TestTelegramRepo_SendPhotoSpoiler(t *testing.T) {
	api := &mockTelegramAPI{}
	gw := NewTelegramRepo(api)

	handle, err := gw.SendPhoto(context.Background(), -200, "file-1", "||x||", repo.SendOptions{
		ParseMode: repo.ParseModeMarkdownV2,
		Spoiler:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(101), handle.MessageID)
	assert.True(t, api.photos[0].HasSpoiler)
	assert.Equal(t, "file-1", api.photos[0].Photo)
}

func TestTelegramRepo_EditsDropKeyboard(t *testing.T) {
	api := &mockTelegramAPI{}
	gw := NewTelegramRepo(api)
	h := domain.MessageHandle{ChatID: -100, MessageID: 9}

	require.NoError(t, gw.EditText(context.Background(), h, "✅ APPROVED"))
	require.NoError(t, gw.EditCaption(context.Background(), h, "❌ REJECTED"))

	assert.Nil(t, api.texts[0].ReplyMarkup)
	assert.Nil(t, api.captions[0].ReplyMarkup)
	assert.Equal(t, int64(9), api.captions[0].MessageID)
}

func TestTelegramRepo_EditNotModifiedIsNil(t *testing.T) {
	api := &mockTelegramAPI{editErr: &telegram.APIError{Code: 400, Description: "Bad Request: message is not modified"}}
	gw := NewTelegramRepo(api)

	assert.NoError(t, gw.EditText(context.Background(), domain.MessageHandle{ChatID: 1, MessageID: 1}, "x"))

	api.editErr = &telegram.APIError{Code: 400, Description: "Bad Request: message to edit not found"}
	assert.Error(t, gw.EditText(context.Background(), domain.MessageHandle{ChatID: 1, MessageID: 1}, "x"))
}

func TestTelegramRepo_AnswerEvent(t *testing.T) {
	api := &mockTelegramAPI{}
	gw := NewTelegramRepo(api)

	require.NoError(t, gw.AnswerEvent(context.Background(), "cb-1", "done"))
	assert.Equal(t, "cb-1", api.answers[0].CallbackQueryID)
	assert.Equal(t, "done", api.answers[0].Text)
}

func TestNewRepositories_ClassifierDisabled(t *testing.T) {
	repos, err := NewRepositories(&mockTelegramAPI{}, nil, Options{
		RateLimitCooldown:   30 * time.Second,
		RateLimitMaxEntries: 10,
		ReviewCacheSize:     10,
		ReviewCacheTTL:      time.Hour,
	})
	require.NoError(t, err)
	assert.Nil(t, repos.Classifier)
	assert.NotNil(t, repos.Gateway)
}
