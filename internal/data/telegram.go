package data

import (
	"context"

	"github.com/ghostnote/confession-relay/internal/biz/domain"
	"github.com/ghostnote/confession-relay/internal/biz/repo"
	"github.com/ghostnote/confession-relay/internal/infra/telegram"
)

// TelegramAPI is the subset of the Bot API client the gateway needs
type TelegramAPI interface {
	SendMessage(ctx context.Context, req telegram.SendMessageRequest) (*telegram.Message, error)
	SendPhoto(ctx context.Context, req telegram.SendPhotoRequest) (*telegram.Message, error)
	EditMessageText(ctx context.Context, req telegram.EditMessageTextRequest) error
	EditMessageCaption(ctx context.Context, req telegram.EditMessageCaptionRequest) error
	AnswerCallbackQuery(ctx context.Context, req telegram.AnswerCallbackQueryRequest) error
}

// telegramRepo implements the messaging gateway on the Bot API
type telegramRepo struct {
	client TelegramAPI
}

// NewTelegramRepo creates a new Telegram gateway
func NewTelegramRepo(client TelegramAPI) repo.Gateway {
	return &telegramRepo{client: client}
}

// SendText sends a text message
func (r *telegramRepo) SendText(ctx context.Context, chatID int64, text string, opts repo.SendOptions) (domain.MessageHandle, error) {
	msg, err := r.client.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   string(opts.ParseMode),
		ReplyMarkup: toKeyboard(opts.Buttons),
	})
	if err != nil {
		return domain.MessageHandle{}, err
	}
	return toHandle(msg, chatID), nil
}

// SendPhoto sends a photo by file handle
func (r *telegramRepo) SendPhoto(ctx context.Context, chatID int64, fileID, caption string, opts repo.SendOptions) (domain.MessageHandle, error) {
	msg, err := r.client.SendPhoto(ctx, telegram.SendPhotoRequest{
		ChatID:      chatID,
		Photo:       fileID,
		Caption:     caption,
		ParseMode:   string(opts.ParseMode),
		HasSpoiler:  opts.Spoiler,
		ReplyMarkup: toKeyboard(opts.Buttons),
	})
	if err != nil {
		return domain.MessageHandle{}, err
	}
	return toHandle(msg, chatID), nil
}

// EditText replaces the text of a message. No markup means the keyboard goes away.
func (r *telegramRepo) EditText(ctx context.Context, handle domain.MessageHandle, text string) error {
	err := r.client.EditMessageText(ctx, telegram.EditMessageTextRequest{
		ChatID:    handle.ChatID,
		MessageID: handle.MessageID,
		Text:      text,
	})
	if telegram.IsNotModified(err) {
		return nil
	}
	return err
}

// EditCaption replaces the caption of a photo message
func (r *telegramRepo) EditCaption(ctx context.Context, handle domain.MessageHandle, caption string) error {
	err := r.client.EditMessageCaption(ctx, telegram.EditMessageCaptionRequest{
		ChatID:    handle.ChatID,
		MessageID: handle.MessageID,
		Caption:   caption,
	})
	if telegram.IsNotModified(err) {
		return nil
	}
	return err
}

// AnswerEvent answers a callback query
func (r *telegramRepo) AnswerEvent(ctx context.Context, eventID, text string) error {
	return r.client.AnswerCallbackQuery(ctx, telegram.AnswerCallbackQueryRequest{
		CallbackQueryID: eventID,
		Text:            text,
	})
}

func toKeyboard(rows [][]domain.Button) *telegram.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	markup := &telegram.InlineKeyboardMarkup{}
	for _, row := range rows {
		var buttons []telegram.InlineKeyboardButton
		for _, b := range row {
			buttons = append(buttons, telegram.InlineKeyboardButton{Text: b.Label, CallbackData: b.Data})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, buttons)
	}
	return markup
}

func toHandle(msg *telegram.Message, chatID int64) domain.MessageHandle {
	if msg == nil {
		return domain.MessageHandle{ChatID: chatID}
	}
	if msg.Chat.ID != 0 {
		chatID = msg.Chat.ID
	}
	return domain.MessageHandle{ChatID: chatID, MessageID: msg.MessageID}
}
