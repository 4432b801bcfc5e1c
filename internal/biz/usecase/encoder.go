package usecase

import (
	"time"

	"github.com/ghostnote/confession-relay/internal/biz/domain"
)

// EncoderConfig contains the moderator-facing header and button labels
type EncoderConfig struct {
	Header       string // Single line
	ApproveLabel string
	SpoilerLabel string
	RejectLabel  string
}

// DefaultEncoderConfig is the default header and button labels
var DefaultEncoderConfig = EncoderConfig{
	Header:       domain.ReviewHeader,
	ApproveLabel: "✅ Approve",
	SpoilerLabel: "🙈 Spoiler",
	RejectLabel:  "❌ Reject",
}

// EncoderUsecase builds reviewable units from admitted submissions
type EncoderUsecase struct {
	cfg EncoderConfig
}

// NewEncoderUsecase creates a new encoder usecase
func NewEncoderUsecase(cfg EncoderConfig) *EncoderUsecase {
	if cfg.Header == "" {
		cfg.Header = DefaultEncoderConfig.Header
	}
	if cfg.ApproveLabel == "" {
		cfg.ApproveLabel = DefaultEncoderConfig.ApproveLabel
	}
	if cfg.SpoilerLabel == "" {
		cfg.SpoilerLabel = DefaultEncoderConfig.SpoilerLabel
	}
	if cfg.RejectLabel == "" {
		cfg.RejectLabel = DefaultEncoderConfig.RejectLabel
	}
	return &EncoderUsecase{cfg: cfg}
}

// Encode renders a submission into a reviewable unit with one decision
// token per action. All tokens share sender, language and creation time.
func (uc *EncoderUsecase) Encode(sub *domain.Submission, now time.Time) *domain.ReviewableUnit {
	body := sub.Body
	if body == "" && sub.HasAttachment() {
		body = domain.PhotoOnlyPlaceholder
	}

	unit := &domain.ReviewableUnit{
		Header:     uc.cfg.Header,
		Body:       body,
		Footer:     domain.ReviewFooter(sub.Language),
		Attachment: sub.Attachment,
		CreatedAt:  now,
	}

	for _, action := range domain.Actions {
		token := domain.NewDecisionToken(action, sub.SenderID, sub.Language, now)
		unit.Tokens = append(unit.Tokens, token)
		unit.Buttons = append(unit.Buttons, domain.Button{
			Label: uc.label(action),
			Data:  token.Encode(),
		})
	}

	return unit
}

func (uc *EncoderUsecase) label(a domain.Action) string {
	switch a {
	case domain.ActionApprove:
		return uc.cfg.ApproveLabel
	case domain.ActionSpoiler:
		return uc.cfg.SpoilerLabel
	default:
		return uc.cfg.RejectLabel
	}
}
