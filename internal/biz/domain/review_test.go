package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripReviewText(t *testing.T) {
	unit := &ReviewableUnit{
		Header: ReviewHeader,
		Body:   "line one\n\nline three",
		Footer: ReviewFooter(LanguageEN),
	}

	assert.Equal(t, "line one\n\nline three", StripReviewText(unit.Text()))
}

func TestStripReviewText_PhotoPlaceholder(t *testing.T) {
	unit := &ReviewableUnit{
		Header: ReviewHeader,
		Body:   PhotoOnlyPlaceholder,
		Footer: ReviewFooter(LanguageUK),
	}

	assert.Equal(t, "", StripReviewText(unit.Text()))
}

func TestStripReviewText_TooShort(t *testing.T) {
	assert.Equal(t, "", StripReviewText("header\n\nfooter"))
}

func TestTerminalText(t *testing.T) {
	rendered := ReviewHeader + "\n\nhello world\n\n" + ReviewFooter(LanguageEN)
	text := TerminalText(ReviewApproved, rendered)

	assert.Equal(t, "✅ APPROVED\n\n"+rendered, text)
	assert.True(t, HasTerminalBanner(text))
	assert.False(t, HasTerminalBanner(rendered))
}

func TestReviewState(t *testing.T) {
	assert.False(t, ReviewPending.IsTerminal())
	assert.True(t, ReviewApproved.IsTerminal())
	assert.True(t, ReviewApprovedWithSpoiler.IsTerminal())
	assert.True(t, ReviewRejected.IsTerminal())

	assert.Equal(t, ReviewApproved, StateForAction(ActionApprove))
	assert.Equal(t, ReviewApprovedWithSpoiler, StateForAction(ActionSpoiler))
	assert.Equal(t, ReviewRejected, StateForAction(ActionReject))
}

func TestReviewFooter(t *testing.T) {
	assert.Equal(t, "👤 LANGUAGE: EN", ReviewFooter(LanguageEN))
}

func TestCaptionFits(t *testing.T) {
	assert.True(t, CaptionFits(ReviewHeader, "short caption", LanguageEN))
	assert.False(t, CaptionFits(ReviewHeader, strings.Repeat("a", 1000), LanguageEN))
	assert.True(t, CaptionFits(ReviewHeader, strings.Repeat("a", 900), LanguageEN))

	// A longer header leaves less room for the body
	assert.False(t, CaptionFits(strings.Repeat("h", 200), strings.Repeat("a", 900), LanguageEN))
}
