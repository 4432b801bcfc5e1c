package repo

import (
	"context"

	"github.com/ghostnote/confession-relay/internal/biz/domain"
)

// ParseMode selects how the destination renders text
type ParseMode string

const (
	ParseModeNone       ParseMode = ""
	ParseModeMarkdownV2 ParseMode = "MarkdownV2"
)

// SendOptions tunes an outgoing message
type SendOptions struct {
	ParseMode ParseMode
	Buttons   [][]domain.Button // Inline keyboard rows
	Spoiler   bool              // Hide the photo behind a spoiler overlay
}

// Gateway is the messaging gateway interface
// Responsible for talking to the messaging platform
type Gateway interface {
	// SendText sends a text message
	SendText(ctx context.Context, chatID int64, text string, opts SendOptions) (domain.MessageHandle, error)

	// SendPhoto sends a photo with an optional caption
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, opts SendOptions) (domain.MessageHandle, error)

	// EditText replaces the text of a message and removes its buttons
	EditText(ctx context.Context, handle domain.MessageHandle, text string) error

	// EditCaption replaces the caption of a photo message and removes its buttons
	EditCaption(ctx context.Context, handle domain.MessageHandle, caption string) error

	// AnswerEvent closes the pending indicator of a button tap
	AnswerEvent(ctx context.Context, eventID, text string) error
}
