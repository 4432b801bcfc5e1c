package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ghostnote/confession-relay/internal/biz/domain"
	"github.com/ghostnote/confession-relay/internal/biz/repo"
)

// Localized message keys used by the state machine
const (
	MsgApproved = "approved"
	MsgRejected = "rejected"
)

// Localizer resolves localized sender-facing messages
type Localizer interface {
	Message(lang domain.Language, key string) string
}

// ModerationConfig contains moderation configuration
type ModerationConfig struct {
	TargetChannelID int64
}

// Outcome describes an applied decision
type Outcome struct {
	Token     domain.DecisionToken
	State     domain.ReviewState
	Published bool
	Notified  bool
	Cached    bool // Body came from the review cache rather than the rendered text
}

// ModerationUsecase applies moderator decisions to reviewable units
type ModerationUsecase struct {
	gateway    repo.Gateway
	reviewRepo repo.ReviewRepo
	localizer  Localizer
	cfg        ModerationConfig
	logger     *slog.Logger
}

// NewModerationUsecase creates a new moderation usecase
func NewModerationUsecase(
	gateway repo.Gateway,
	reviewRepo repo.ReviewRepo,
	localizer Localizer,
	cfg ModerationConfig,
	logger *slog.Logger,
) *ModerationUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModerationUsecase{
		gateway:    gateway,
		reviewRepo: reviewRepo,
		localizer:  localizer,
		cfg:        cfg,
		logger:     logger.With("component", "moderation"),
	}
}

// Decide applies a decision event (core method).
// Order of effects: publish, notify sender, terminal edit.
func (uc *ModerationUsecase) Decide(ctx context.Context, event *domain.DecisionEvent) (*Outcome, error) {
	// 1. Parse token
	token, err := domain.ParseDecisionToken(event.Token)
	if err != nil {
		return nil, err
	}
	state := domain.StateForAction(token.Action)

	// 2. Claim the unit and resolve its content
	sub, cached, err := uc.claim(event, token, state)
	if errors.Is(err, domain.ErrAlreadyDecided) {
		return nil, uc.finishDecided(ctx, event)
	}
	if err != nil {
		return nil, err
	}
	outcome := &Outcome{Token: token, State: state, Cached: cached}

	// 3. Publish
	if token.Action != domain.ActionReject {
		if err := uc.publish(ctx, sub, token.Action == domain.ActionSpoiler); err != nil {
			if cached {
				uc.reviewRepo.Revert(event.Origin)
			}
			return outcome, fmt.Errorf("%w: %v", domain.ErrDestinationUnavailable, err)
		}
		outcome.Published = true
	}
	if cached {
		uc.reviewRepo.Settle(event.Origin)
	}

	// 4. Notify sender (best effort)
	key := MsgApproved
	if token.Action == domain.ActionReject {
		key = MsgRejected
	}
	if _, err := uc.gateway.SendText(ctx, token.SenderID, uc.localizer.Message(token.Language, key), repo.SendOptions{}); err != nil {
		// Sender may have blocked the bot
		uc.logger.Warn("sender notification failed", "action", token.Action, "error", err)
	} else {
		outcome.Notified = true
	}

	// 5. Terminal edit, buttons removed
	if err := uc.editTerminal(ctx, event, state); err != nil {
		return outcome, fmt.Errorf("edit reviewable unit: %w", err)
	}

	return outcome, nil
}

// finishDecided handles a tap on a unit that was already decided. If the
// earlier terminal edit never landed, it is applied now; nothing is
// published or sent again. Always returns an ErrAlreadyDecided error.
func (uc *ModerationUsecase) finishDecided(ctx context.Context, event *domain.DecisionEvent) error {
	review, ok := uc.reviewRepo.Get(event.Origin)
	if !ok || !review.Settled || domain.HasTerminalBanner(event.OriginText) {
		return domain.ErrAlreadyDecided
	}

	if err := uc.editTerminal(ctx, event, review.State); err != nil {
		return fmt.Errorf("%w: terminal edit: %v", domain.ErrAlreadyDecided, err)
	}
	uc.logger.Info("terminal edit reapplied", "state", review.State, "message_id", event.Origin.MessageID)
	return domain.ErrAlreadyDecided
}

func (uc *ModerationUsecase) editTerminal(ctx context.Context, event *domain.DecisionEvent, state domain.ReviewState) error {
	terminal := domain.TerminalText(state, event.OriginText)
	if event.OriginIsPhoto {
		return uc.gateway.EditCaption(ctx, event.Origin, terminal)
	}
	return uc.gateway.EditText(ctx, event.Origin, terminal)
}

// claim moves the unit out of pending and returns the submission to act on
func (uc *ModerationUsecase) claim(event *domain.DecisionEvent, token domain.DecisionToken, state domain.ReviewState) (*domain.Submission, bool, error) {
	if review, ok := uc.reviewRepo.Get(event.Origin); ok {
		if review.Submission.SenderID != token.SenderID {
			return nil, false, fmt.Errorf("%w: sender does not match reviewable unit", domain.ErrMalformedDecision)
		}
		if !uc.reviewRepo.Transition(event.Origin, state) {
			return nil, false, domain.ErrAlreadyDecided
		}
		sub := review.Submission
		return &sub, true, nil
	}

	// Cache miss (evicted or restarted): fall back to the rendered unit
	if domain.HasTerminalBanner(event.OriginText) {
		return nil, false, domain.ErrAlreadyDecided
	}
	sub := &domain.Submission{
		SenderID: token.SenderID,
		Language: token.Language,
		Body:     domain.StripReviewText(event.OriginText),
	}
	if event.OriginIsPhoto {
		sub.Attachment = event.OriginPhoto
	}
	if sub.Body == "" && !sub.HasAttachment() {
		return nil, false, fmt.Errorf("%w: empty reviewable unit", domain.ErrMalformedDecision)
	}
	return sub, false, nil
}

// publish sends the submission to the public channel
func (uc *ModerationUsecase) publish(ctx context.Context, sub *domain.Submission, spoiler bool) error {
	body := sub.Body
	opts := repo.SendOptions{}
	if spoiler {
		body = domain.FormatSpoiler(body)
		opts.ParseMode = repo.ParseModeMarkdownV2
	}

	var err error
	if sub.HasAttachment() {
		opts.Spoiler = spoiler
		_, err = uc.gateway.SendPhoto(ctx, uc.cfg.TargetChannelID, sub.Attachment, body, opts)
	} else {
		_, err = uc.gateway.SendText(ctx, uc.cfg.TargetChannelID, body, opts)
	}
	return err
}
