package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghostnote/confession-relay/internal/biz/domain"
)

func TestMessages_Localized(t *testing.T) {
	m := DefaultMessages("")

	assert.Equal(t, "✅ Your confession has been published!", m.Message(domain.LanguageEN, MsgApproved))
	assert.Equal(t, "✅ Ваше зізнання опубліковано!", m.Message(domain.LanguageUK, MsgApproved))
	assert.Equal(t, "❌ Ваше признание было отклонено модераторами.", m.Message(domain.LanguageRU, MsgRejected))
}

func TestMessages_StartQuotesChannel(t *testing.T) {
	m := DefaultMessages("")
	assert.Contains(t, m.Message(domain.LanguageEN, MsgStart), "@GhostNoteAnon")
	assert.NotContains(t, m.Message(domain.LanguageRU, MsgStart), "{channel}")

	m = DefaultMessages("@Elsewhere")
	assert.Contains(t, m.Message(domain.LanguageUK, MsgStart), "@Elsewhere")
}

func TestMessages_FallbackToEnglish(t *testing.T) {
	m := DefaultMessages("")

	// Key missing from the Ukrainian catalog
	assert.Equal(t, "🙈 Spoiler", m.Message(domain.LanguageUK, MsgModSpoiler))
	// Unknown language
	assert.Equal(t, "✅ Your message has been sent for moderation.", m.Message(domain.Language("de"), MsgSentForModeration))
	// Unknown key
	assert.Empty(t, m.Message(domain.LanguageEN, "nope"))
}

func TestMessages_Merge(t *testing.T) {
	m := DefaultMessages("")
	require.NoError(t, m.Merge([]byte(`
uk:
  approved: "Опубліковано"
  rejected: ""
EN:
  dm_only: "DMs only"
`)))

	assert.Equal(t, "Опубліковано", m.Message(domain.LanguageUK, MsgApproved))
	// Empty overrides keep the default
	assert.Equal(t, "❌ Ваше зізнання було відхилено модераторами.", m.Message(domain.LanguageUK, MsgRejected))
	assert.Equal(t, "DMs only", m.Message(domain.LanguageEN, MsgDMOnly))
}

func TestMessages_MergeRejectsUnknownLanguage(t *testing.T) {
	m := DefaultMessages("")
	assert.Error(t, m.Merge([]byte("de:\n  approved: x\n")))
	assert.Error(t, m.Merge([]byte("{not yaml")))
}

func TestMessages_DefaultsNotShared(t *testing.T) {
	a := DefaultMessages("")
	require.NoError(t, a.Merge([]byte("en:\n  approved: changed\n")))

	b := DefaultMessages("")
	assert.Equal(t, "✅ Your confession has been published!", b.Message(domain.LanguageEN, MsgApproved))
}

func TestLoadMessages_MissingFile(t *testing.T) {
	_, err := LoadMessages("/nonexistent/messages.yaml", "")
	assert.Error(t, err)
}

func TestMessages_RateLimitQuotesCooldown(t *testing.T) {
	m := DefaultMessages("")
	assert.Equal(t, "⏱ Please wait 30 seconds before sending another message.", m.Message(domain.LanguageEN, MsgRateLimit))

	m.SetCooldown(90 * time.Second)
	assert.Equal(t, "⏱ Please wait 90 seconds before sending another message.", m.Message(domain.LanguageEN, MsgRateLimit))
	assert.Contains(t, m.Message(domain.LanguageUK, MsgRateLimit), "90")
	assert.NotContains(t, m.Message(domain.LanguageRU, MsgRateLimit), "{cooldown}")

	// Partial seconds round up
	m.SetCooldown(1500 * time.Millisecond)
	assert.Contains(t, m.Message(domain.LanguageEN, MsgRateLimit), "wait 2 seconds")
}

func TestMessages_CaptionTooLongLocalized(t *testing.T) {
	m := DefaultMessages("")
	for _, lang := range []domain.Language{domain.LanguageEN, domain.LanguageUK, domain.LanguageRU} {
		text := m.Message(lang, MsgCaptionTooLong)
		assert.NotEmpty(t, text)
		assert.NotEqual(t, m.Message(lang, MsgInvalidLength), text)
	}
}

func TestMessages_MergeRejectsMultilineHeader(t *testing.T) {
	m := DefaultMessages("")
	err := m.Merge([]byte("en:\n  mod_new_confession: \"first\\nsecond\"\n"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)

	require.NoError(t, m.Merge([]byte("en:\n  mod_new_confession: \"🕵️ Pending\"\n")))
	assert.Equal(t, "🕵️ Pending", m.Message(domain.LanguageEN, MsgModNewConfession))
}
