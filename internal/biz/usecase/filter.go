package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ghostnote/confession-relay/internal/biz/domain"
	"github.com/ghostnote/confession-relay/internal/biz/repo"
)

// urlPattern matches links, platform links and @handles
var urlPattern = regexp.MustCompile(`(?i)https?://|www\.|t\.me/|@[\p{L}\p{N}_]`)

// emojiRanges are the code point ranges counted as emoji
var emojiRanges = [][2]rune{
	{0x1F600, 0x1F64F},
	{0x1F300, 0x1F5FF},
	{0x1F680, 0x1F6FF},
	{0x1F1E0, 0x1F1FF},
	{0x2702, 0x27B0},
	{0x24C2, 0x1F251},
}

const (
	emojiDensityLimit = 0.3
	maxRepeatedRunes  = 5
)

// AdmissionConfig contains admission configuration
type AdmissionConfig struct {
	ReviewHeader string // Header of the reviewable unit, counted against the caption limit
}

// AdmissionUsecase handles admission checks for new submissions
type AdmissionUsecase struct {
	rateLimitRepo  repo.RateLimitRepo
	classifierRepo repo.ClassifierRepo
	cfg            AdmissionConfig
	logger         *slog.Logger
}

// NewAdmissionUsecase creates a new admission usecase.
// classifierRepo may be nil.
func NewAdmissionUsecase(
	rateLimitRepo repo.RateLimitRepo,
	classifierRepo repo.ClassifierRepo,
	cfg AdmissionConfig,
	logger *slog.Logger,
) *AdmissionUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReviewHeader == "" {
		cfg.ReviewHeader = domain.ReviewHeader
	}
	return &AdmissionUsecase{
		rateLimitRepo:  rateLimitRepo,
		classifierRepo: classifierRepo,
		cfg:            cfg,
		logger:         logger.With("component", "admission"),
	}
}

// Admit runs the content checks, the rate limiter and the optional classifier.
// Returns nil on admission, or ErrInvalidLength, ErrCaptionTooLong,
// ErrSuspiciousContent or ErrRateLimited.
// Only an admitted submission starts the sender's cooldown.
func (uc *AdmissionUsecase) Admit(ctx context.Context, sub *domain.Submission, now time.Time) error {
	if err := Evaluate(sub.Body, sub.HasAttachment()); err != nil {
		return err
	}
	if sub.HasAttachment() && sub.Body != "" && !domain.CaptionFits(uc.cfg.ReviewHeader, sub.Body, sub.Language) {
		return domain.ErrCaptionTooLong
	}

	// Senders in cooldown never reach the classifier
	if !uc.rateLimitRepo.Allowed(sub.SenderID, now) {
		return domain.ErrRateLimited
	}

	if sub.Body != "" && uc.classifierRepo != nil {
		spam, err := uc.classifierRepo.IsSpam(ctx, sub.Body)
		if err != nil {
			// Classifier outages must not block submissions
			uc.logger.Warn("classifier failed, admitting", "error", err)
		} else if spam {
			return fmt.Errorf("%w: classifier", domain.ErrSuspiciousContent)
		}
	}

	if !uc.rateLimitRepo.TryAdmit(sub.SenderID, now) {
		return domain.ErrRateLimited
	}
	return nil
}

// IsClassifierEnabled returns whether the content classifier is configured
func (uc *AdmissionUsecase) IsClassifierEnabled() bool {
	return uc.classifierRepo != nil
}

// Evaluate checks length bounds and content heuristics.
// Returns ErrInvalidLength for visible rejections and ErrSuspiciousContent for silent drops.
func Evaluate(text string, hasAttachment bool) error {
	if text == "" {
		if hasAttachment {
			return nil
		}
		return fmt.Errorf("%w: empty submission", domain.ErrInvalidLength)
	}

	n := utf8.RuneCountInString(text)
	if n < domain.MinBodyLength || n > domain.MaxBodyLength {
		return fmt.Errorf("%w: %d characters", domain.ErrInvalidLength, n)
	}

	if IsSuspicious(text) {
		return domain.ErrSuspiciousContent
	}
	return nil
}

// IsSuspicious reports whether text looks like spam: links, mostly emoji, or repetition
func IsSuspicious(text string) bool {
	return urlPattern.MatchString(text) || isEmojiDense(text) || hasRepetition(text)
}

func isEmojiDense(text string) bool {
	total, emoji := 0, 0
	for _, r := range text {
		total++
		if isEmoji(r) {
			emoji++
		}
	}
	return float64(emoji) > float64(total)*emojiDensityLimit
}

func isEmoji(r rune) bool {
	for _, rg := range emojiRanges {
		if r >= rg[0] && r <= rg[1] {
			return true
		}
	}
	return false
}

func hasRepetition(text string) bool {
	return hasRepeatedRunes(text) || hasRepeatedWord(text)
}

// hasRepeatedRunes finds any character, other than a line break, repeated
// maxRepeatedRunes times in a row
func hasRepeatedRunes(text string) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev && r != '\n' {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= maxRepeatedRunes {
			return true
		}
	}
	return false
}

// hasRepeatedWord finds a word immediately followed, across whitespace only,
// by the same word (case-insensitive)
func hasRepeatedWord(text string) bool {
	var prevWord string
	gapIsSpace := false
	var word strings.Builder

	flush := func() bool {
		if word.Len() == 0 {
			return false
		}
		w := word.String()
		word.Reset()
		repeated := prevWord != "" && gapIsSpace && strings.EqualFold(prevWord, w)
		prevWord = w
		gapIsSpace = false
		return repeated
	}

	for _, r := range text {
		switch {
		case isWordRune(r):
			word.WriteRune(r)
		case unicode.IsSpace(r):
			if flush() {
				return true
			}
			if prevWord != "" {
				gapIsSpace = true
			}
		default:
			if flush() {
				return true
			}
			// Punctuation breaks the chain
			prevWord = ""
			gapIsSpace = false
		}
	}
	return flush()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
