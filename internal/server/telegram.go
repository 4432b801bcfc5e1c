package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghostnote/confession-relay/internal/biz/domain"
	"github.com/ghostnote/confession-relay/internal/infra/telegram"
	"github.com/ghostnote/confession-relay/internal/metrics"
	"github.com/ghostnote/confession-relay/internal/service"
)

const (
	seenUpdatesWindow = 5 * time.Minute
	handleTimeout     = 60 * time.Second
)

// UpdateSource delivers platform updates
type UpdateSource interface {
	OnUpdate(handler telegram.UpdateHandler)
	Start(ctx context.Context) error
	Stop()
}

// Relay is the service the server dispatches to
type Relay interface {
	HandleMessage(ctx context.Context, msg *domain.InboundMessage) error
	HandleDecision(ctx context.Context, event *domain.DecisionEvent) error
	DismissEvent(ctx context.Context, eventID string) error
}

// Config contains server configuration
type Config struct {
	BotID            int64 // Replies to this user address the bot
	ModerationChatID int64 // Decisions are accepted from this chat only
}

// TelegramServer turns Bot API updates into relay calls
type TelegramServer struct {
	source UpdateSource
	relay  Relay
	cfg    Config
	logger *slog.Logger

	ctx context.Context

	// Update deduplication cache
	seenMu sync.Mutex
	seen   map[int64]time.Time // updateID -> timestamp
	now    func() time.Time
}

// NewTelegramServer creates a new Telegram server
func NewTelegramServer(source UpdateSource, relay Relay, cfg Config, logger *slog.Logger) *TelegramServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &TelegramServer{
		source: source,
		relay:  relay,
		cfg:    cfg,
		logger: logger.With("component", "server"),
		ctx:    context.Background(),
		seen:   make(map[int64]time.Time),
		now:    time.Now,
	}
}

// Start polls for updates until ctx is done or Stop is called (blocking)
func (s *TelegramServer) Start(ctx context.Context) error {
	s.ctx = ctx
	s.source.OnUpdate(s.handleUpdate)
	return s.source.Start(ctx)
}

// Stop stops the server
func (s *TelegramServer) Stop() {
	s.source.Stop()
}

// handleUpdate dispatches one update
func (s *TelegramServer) handleUpdate(u *telegram.Update) {
	if !s.markSeen(u.UpdateID) {
		metrics.UpdatesCounter.WithLabelValues("duplicate").Inc()
		s.logger.Debug("duplicate update ignored", "update_id", u.UpdateID)
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, handleTimeout)
	defer cancel()
	ctx = service.WithLogAttrs(ctx, "update_id", u.UpdateID, "trace", uuid.NewString())

	switch {
	case u.Message != nil:
		msg := ToInboundMessage(u, s.cfg.BotID)
		if msg == nil {
			metrics.UpdatesCounter.WithLabelValues("ignored").Inc()
			return
		}
		metrics.UpdatesCounter.WithLabelValues("message").Inc()
		if err := s.relay.HandleMessage(ctx, msg); err != nil {
			s.logger.Error("handle message failed", "update_id", u.UpdateID, "chat_type", msg.ChatType, "error", err)
		}

	case u.CallbackQuery != nil:
		event := ToDecisionEvent(u.CallbackQuery)
		if event == nil || event.Origin.ChatID != s.cfg.ModerationChatID {
			metrics.UpdatesCounter.WithLabelValues("ignored").Inc()
			s.logger.Warn("callback outside moderation chat ignored", "update_id", u.UpdateID)
			// Stop the tapper's spinner
			if err := s.relay.DismissEvent(ctx, u.CallbackQuery.ID); err != nil {
				s.logger.Warn("dismiss callback failed", "update_id", u.UpdateID, "error", err)
			}
			return
		}
		metrics.UpdatesCounter.WithLabelValues("callback").Inc()
		if err := s.relay.HandleDecision(ctx, event); err != nil {
			s.logger.Error("handle decision failed", "update_id", u.UpdateID, "error", err)
		}

	default:
		metrics.UpdatesCounter.WithLabelValues("ignored").Inc()
	}
}

// ToInboundMessage converts a message update. Returns nil for messages
// without a sender, such as channel posts.
func ToInboundMessage(u *telegram.Update, botID int64) *domain.InboundMessage {
	m := u.Message
	if m == nil || m.From == nil {
		return nil
	}

	msg := &domain.InboundMessage{
		UpdateID:     u.UpdateID,
		ChatID:       m.Chat.ID,
		ChatType:     domain.ChatType(m.Chat.Type),
		SenderID:     m.From.ID,
		LanguageHint: m.From.LanguageCode,
		Text:         m.Text,
	}

	if len(m.Photo) > 0 {
		msg.Text = m.Caption
		for _, p := range m.Photo {
			msg.PhotoFileIDs = append(msg.PhotoFileIDs, p.FileID)
		}
	}

	msg.IsCommand = m.HasCommand()
	msg.AddressesBot = msg.IsCommand ||
		(m.ReplyToMessage != nil && m.ReplyToMessage.From != nil && m.ReplyToMessage.From.ID == botID)
	return msg
}

// ToDecisionEvent converts a button tap. Returns nil when the tapped
// message is no longer available.
func ToDecisionEvent(cq *telegram.CallbackQuery) *domain.DecisionEvent {
	if cq == nil || cq.Message == nil {
		return nil
	}
	origin := cq.Message

	event := &domain.DecisionEvent{
		EventID:     cq.ID,
		Token:       cq.Data,
		ModeratorID: cq.From.ID,
		Origin:      domain.MessageHandle{ChatID: origin.Chat.ID, MessageID: origin.MessageID},
		OriginText:  origin.Text,
	}
	if len(origin.Photo) > 0 {
		event.OriginIsPhoto = true
		event.OriginText = origin.Caption
		event.OriginPhoto = origin.Photo[len(origin.Photo)-1].FileID
	}
	return event
}

// markSeen records an update id, reporting false if it was already seen.
// Expired records are cleaned up on the way.
func (s *TelegramServer) markSeen(updateID int64) bool {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()

	now := s.now()
	cutoff := now.Add(-seenUpdatesWindow)
	for id, ts := range s.seen {
		if ts.Before(cutoff) {
			delete(s.seen, id)
		}
	}

	if _, exists := s.seen[updateID]; exists {
		return false
	}
	s.seen[updateID] = now
	return true
}
