package domain

import (
	"strings"
	"time"
)

const (
	// ReviewHeader is the default first line of every reviewable unit
	ReviewHeader = "📝 New confession for review:"

	// PhotoOnlyPlaceholder stands in for an empty body next to a photo
	PhotoOnlyPlaceholder = "[Photo only]"

	reviewFooterPrefix = "👤 LANGUAGE: "

	// Lines around the body: header + blank line, blank line + footer
	headerLines = 2
	footerLines = 2
)

// ReviewState is the moderation state of a reviewable unit
type ReviewState string

const (
	ReviewPending             ReviewState = "pending"
	ReviewApproved            ReviewState = "approved"
	ReviewApprovedWithSpoiler ReviewState = "approved_spoiler"
	ReviewRejected            ReviewState = "rejected"
)

// IsTerminal reports whether no further transition is possible
func (s ReviewState) IsTerminal() bool {
	return s != ReviewPending && s != ""
}

// Banner returns the banner prepended to a decided unit
func (s ReviewState) Banner() string {
	switch s {
	case ReviewApproved:
		return "✅ APPROVED"
	case ReviewApprovedWithSpoiler:
		return "🙈 APPROVED (SPOILER)"
	case ReviewRejected:
		return "❌ REJECTED"
	}
	return ""
}

// StateForAction maps a decision to its terminal state
func StateForAction(a Action) ReviewState {
	switch a {
	case ActionApprove:
		return ReviewApproved
	case ActionSpoiler:
		return ReviewApprovedWithSpoiler
	case ActionReject:
		return ReviewRejected
	}
	return ReviewPending
}

// Button is one moderator action control
type Button struct {
	Label string
	Data  string
}

// ReviewableUnit is the message a moderator acts on
type ReviewableUnit struct {
	Header     string
	Body       string // Submission body or PhotoOnlyPlaceholder
	Footer     string
	Attachment string
	Tokens     []DecisionToken
	Buttons    []Button
	CreatedAt  time.Time
}

// Text renders the unit as message text or photo caption
func (u *ReviewableUnit) Text() string {
	return u.Header + "\n\n" + u.Body + "\n\n" + u.Footer
}

// HasAttachment checks if the unit is posted as a photo
func (u *ReviewableUnit) HasAttachment() bool {
	return u.Attachment != ""
}

// ReviewFooter renders the footer line for a language
func ReviewFooter(lang Language) string {
	return reviewFooterPrefix + lang.Tag()
}

// StripReviewText recovers the submission body from a rendered unit by
// dropping the header and footer lines. The photo placeholder maps back to
// an empty body.
func StripReviewText(rendered string) string {
	lines := strings.Split(rendered, "\n")
	if len(lines) <= headerLines+footerLines {
		return ""
	}
	body := strings.Join(lines[headerLines:len(lines)-footerLines], "\n")
	if body == PhotoOnlyPlaceholder {
		return ""
	}
	return body
}

// TerminalText renders a decided unit: banner, blank line, original text
func TerminalText(state ReviewState, rendered string) string {
	return state.Banner() + "\n\n" + rendered
}

// HasTerminalBanner checks if rendered text already carries a decision banner
func HasTerminalBanner(rendered string) bool {
	for _, s := range []ReviewState{ReviewApproved, ReviewApprovedWithSpoiler, ReviewRejected} {
		if strings.HasPrefix(rendered, s.Banner()) {
			return true
		}
	}
	return false
}

// PendingReview is the side cache entry for a posted unit
type PendingReview struct {
	Handle     MessageHandle
	Submission Submission
	State      ReviewState
	Settled    bool // Decision can no longer be reverted
	PostedAt   time.Time
}

// CaptionLimit is the platform limit for photo captions, in UTF-16 code units
const CaptionLimit = 1024

// CaptionFits checks that a photo unit carrying body still fits the caption
// limit after the longest terminal banner is prepended.
func CaptionFits(header, body string, lang Language) bool {
	unit := ReviewableUnit{Header: header, Body: body, Footer: ReviewFooter(lang)}
	return utf16Len(TerminalText(ReviewApprovedWithSpoiler, unit.Text())) <= CaptionLimit
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
