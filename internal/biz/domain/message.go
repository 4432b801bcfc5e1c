package domain

import "strconv"

// ChatType represents the chat type
type ChatType string

const (
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
	ChatTypeChannel    ChatType = "channel"
)

// IsPrivate checks if the chat is a one-to-one chat with the bot
func (t ChatType) IsPrivate() bool {
	return t == ChatTypePrivate
}

// MessageHandle identifies a message posted by the gateway
type MessageHandle struct {
	ChatID    int64
	MessageID int64
}

// IsZero reports whether the handle points at nothing
func (h MessageHandle) IsZero() bool {
	return h.ChatID == 0 && h.MessageID == 0
}

// Key returns a stable cache key for the handle
func (h MessageHandle) Key() string {
	return strconv.FormatInt(h.ChatID, 10) + ":" + strconv.FormatInt(h.MessageID, 10)
}

// InboundMessage represents a message received from a sender
type InboundMessage struct {
	UpdateID     int64
	ChatID       int64
	ChatType     ChatType
	SenderID     int64
	LanguageHint string
	Text         string   // Text body or photo caption
	PhotoFileIDs []string // Photo sizes, smallest first
	IsCommand    bool     // Starts with a bot command
	AddressesBot bool     // Command or reply to the bot (group chats only)
}

// HasPhoto checks if the message carries a photo
func (m *InboundMessage) HasPhoto() bool {
	return len(m.PhotoFileIDs) > 0
}

// LargestPhoto returns the highest resolution photo variant
func (m *InboundMessage) LargestPhoto() string {
	if len(m.PhotoFileIDs) == 0 {
		return ""
	}
	return m.PhotoFileIDs[len(m.PhotoFileIDs)-1]
}

// DecisionEvent represents a moderator tapping an action button
type DecisionEvent struct {
	EventID       string
	Token         string
	ModeratorID   int64
	Origin        MessageHandle
	OriginText    string // Rendered text or caption of the reviewable unit
	OriginIsPhoto bool
	OriginPhoto   string // Largest photo of the reviewable unit, if any
}
