package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ghostnote/confession-relay/internal/biz/domain"
	"github.com/ghostnote/confession-relay/internal/biz/repo"
	"github.com/ghostnote/confession-relay/internal/biz/usecase"
	"github.com/ghostnote/confession-relay/internal/conf"
	"github.com/ghostnote/confession-relay/internal/metrics"
)

// RelayConfig contains relay configuration
type RelayConfig struct {
	ModerationChatID int64
}

// RelayService routes sender messages into moderation and moderator
// decisions back out to the channel
type RelayService struct {
	admissionUC  *usecase.AdmissionUsecase
	encoderUC    *usecase.EncoderUsecase
	moderationUC *usecase.ModerationUsecase
	gateway      repo.Gateway
	reviewRepo   repo.ReviewRepo
	localizer    usecase.Localizer
	cfg          RelayConfig
	logger       *slog.Logger

	now func() time.Time
}

// NewRelayService creates a new relay service
func NewRelayService(
	admissionUC *usecase.AdmissionUsecase,
	encoderUC *usecase.EncoderUsecase,
	moderationUC *usecase.ModerationUsecase,
	gateway repo.Gateway,
	reviewRepo repo.ReviewRepo,
	localizer usecase.Localizer,
	cfg RelayConfig,
	logger *slog.Logger,
) *RelayService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelayService{
		admissionUC:  admissionUC,
		encoderUC:    encoderUC,
		moderationUC: moderationUC,
		gateway:      gateway,
		reviewRepo:   reviewRepo,
		localizer:    localizer,
		cfg:          cfg,
		logger:       logger.With("component", "relay"),
		now:          time.Now,
	}
}

// HandleMessage processes an inbound sender message
func (s *RelayService) HandleMessage(ctx context.Context, msg *domain.InboundMessage) error {
	lang := domain.ParseLanguage(msg.LanguageHint)
	logger := loggerFrom(ctx, s.logger)

	// 1. Only private chats accept submissions
	if !msg.ChatType.IsPrivate() {
		if msg.AddressesBot {
			s.reply(ctx, msg.ChatID, lang, conf.MsgDMOnly)
		}
		return nil
	}

	// 2. Commands
	if msg.IsCommand {
		s.reply(ctx, msg.ChatID, lang, conf.MsgStart)
		return nil
	}

	// Stickers, voice notes and the like carry nothing to relay
	if msg.Text == "" && !msg.HasPhoto() {
		return nil
	}

	// 3. Admission
	now := s.now()
	sub := domain.NewSubmission(msg)
	if err := s.admissionUC.Admit(ctx, sub, now); err != nil {
		switch {
		case errors.Is(err, domain.ErrCaptionTooLong):
			metrics.SubmissionsCounter.WithLabelValues(metrics.ResultCaptionTooLong).Inc()
			s.reply(ctx, msg.ChatID, lang, conf.MsgCaptionTooLong)
			return nil
		case errors.Is(err, domain.ErrInvalidLength):
			metrics.SubmissionsCounter.WithLabelValues(metrics.ResultInvalidLength).Inc()
			s.reply(ctx, msg.ChatID, lang, conf.MsgInvalidLength)
			return nil
		case errors.Is(err, domain.ErrRateLimited):
			metrics.SubmissionsCounter.WithLabelValues(metrics.ResultRateLimited).Inc()
			s.reply(ctx, msg.ChatID, lang, conf.MsgRateLimit)
			return nil
		case errors.Is(err, domain.ErrSuspiciousContent):
			metrics.SubmissionsCounter.WithLabelValues(metrics.ResultDropped).Inc()
			logger.Debug("submission dropped", "reason", err)
			return nil
		}
		metrics.SubmissionsCounter.WithLabelValues(metrics.ResultFailed).Inc()
		return fmt.Errorf("admit submission: %w", err)
	}

	// 4. Post the reviewable unit
	unit := s.encoderUC.Encode(sub, now)
	handle, err := s.postUnit(ctx, unit)
	if err != nil {
		metrics.SubmissionsCounter.WithLabelValues(metrics.ResultFailed).Inc()
		metrics.GatewayErrorsCounter.WithLabelValues("post_unit").Inc()
		return fmt.Errorf("post reviewable unit: %w", err)
	}

	s.reviewRepo.Put(&domain.PendingReview{
		Handle:     handle,
		Submission: *sub,
		State:      domain.ReviewPending,
		PostedAt:   now,
	})
	metrics.PendingReviewsGauge.Set(float64(s.reviewRepo.Len()))
	metrics.SubmissionsCounter.WithLabelValues(metrics.ResultAdmitted).Inc()
	logger.Info("submission sent for moderation", "lang", sub.Language, "photo", sub.HasAttachment(), "message_id", handle.MessageID)

	// 5. Acknowledge
	s.reply(ctx, msg.ChatID, lang, conf.MsgSentForModeration)
	return nil
}

// HandleDecision processes a moderator button tap. The tap is always
// answered so the moderator's client stops waiting.
func (s *RelayService) HandleDecision(ctx context.Context, event *domain.DecisionEvent) error {
	logger := loggerFrom(ctx, s.logger)

	outcome, err := s.moderationUC.Decide(ctx, event)

	action := "unknown"
	if outcome != nil {
		action = string(outcome.Token.Action)
		if !outcome.Notified && !errors.Is(err, domain.ErrDestinationUnavailable) {
			metrics.NotifyFailuresCounter.Inc()
		}
	}

	var answer string
	result := metrics.DecisionApplied
	var ret error
	switch {
	case err == nil:
		logger.Info("decision applied", "action", action, "state", outcome.State, "cached", outcome.Cached, "moderator", event.ModeratorID)
	case errors.Is(err, domain.ErrDestinationUnavailable):
		result = metrics.DecisionPublishFailed
		metrics.GatewayErrorsCounter.WithLabelValues("publish").Inc()
		answer = s.localizer.Message(domain.LanguageEN, conf.MsgPublishFailed)
		logger.Error("publish failed, unit left pending", "action", action, "error", err)
	case errors.Is(err, domain.ErrAlreadyDecided):
		result = metrics.DecisionAlreadyDecided
		answer = s.localizer.Message(domain.LanguageEN, conf.MsgAlreadyDecided)
		logger.Info("decision ignored, already decided", "moderator", event.ModeratorID)
	case errors.Is(err, domain.ErrMalformedDecision):
		result = metrics.DecisionMalformed
		logger.Warn("malformed decision ignored", "error", err)
	default:
		result = metrics.DecisionEditFailed
		metrics.GatewayErrorsCounter.WithLabelValues("edit").Inc()
		ret = err
	}
	metrics.DecisionsCounter.WithLabelValues(action, result).Inc()
	metrics.PendingReviewsGauge.Set(float64(s.reviewRepo.Len()))

	if err := s.gateway.AnswerEvent(ctx, event.EventID, answer); err != nil {
		metrics.GatewayErrorsCounter.WithLabelValues("answer").Inc()
		logger.Warn("answer callback failed", "error", err)
	}
	return ret
}

// DismissEvent answers a tap that carries no decision
func (s *RelayService) DismissEvent(ctx context.Context, eventID string) error {
	if err := s.gateway.AnswerEvent(ctx, eventID, ""); err != nil {
		metrics.GatewayErrorsCounter.WithLabelValues("answer").Inc()
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

func (s *RelayService) postUnit(ctx context.Context, unit *domain.ReviewableUnit) (domain.MessageHandle, error) {
	opts := repo.SendOptions{Buttons: [][]domain.Button{unit.Buttons}}
	if unit.HasAttachment() {
		return s.gateway.SendPhoto(ctx, s.cfg.ModerationChatID, unit.Attachment, unit.Text(), opts)
	}
	return s.gateway.SendText(ctx, s.cfg.ModerationChatID, unit.Text(), opts)
}

// reply sends a localized message; failures are logged only
func (s *RelayService) reply(ctx context.Context, chatID int64, lang domain.Language, key string) {
	if _, err := s.gateway.SendText(ctx, chatID, s.localizer.Message(lang, key), repo.SendOptions{}); err != nil {
		metrics.GatewayErrorsCounter.WithLabelValues("reply").Inc()
		loggerFrom(ctx, s.logger).Warn("reply failed", "key", key, "error", err)
	}
}
