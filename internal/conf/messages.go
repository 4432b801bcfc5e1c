package conf

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ghostnote/confession-relay/internal/biz/domain"
)

// Message keys
const (
	MsgStart             = "start"
	MsgSentForModeration = "sent_for_moderation"
	MsgApproved          = "approved"
	MsgRejected          = "rejected"
	MsgRateLimit         = "rate_limit"
	MsgInvalidLength     = "invalid_length"
	MsgCaptionTooLong    = "caption_too_long"
	MsgDMOnly            = "dm_only"
	MsgSuspiciousContent = "suspicious_content"
	MsgModNewConfession  = "mod_new_confession"
	MsgModApprove        = "mod_approve"
	MsgModReject         = "mod_reject"
	MsgModSpoiler        = "mod_spoiler"
	MsgPublishFailed     = "publish_failed"
	MsgAlreadyDecided    = "already_decided"
)

// DefaultChannelHandle is quoted in the start message when none is configured
const DefaultChannelHandle = "@GhostNoteAnon"

// Placeholders filled in on lookup
const (
	channelPlaceholder  = "{channel}"
	cooldownPlaceholder = "{cooldown}"
)

var defaultCatalog = map[domain.Language]map[string]string{
	domain.LanguageEN: {
		MsgStart:             "🤐 Send me your anonymous confession.\n\nYour message will be reviewed by moderators before publication. \n\nAnd posted here: {channel}",
		MsgSentForModeration: "✅ Your message has been sent for moderation.",
		MsgApproved:          "✅ Your confession has been published!",
		MsgRejected:          "❌ Your confession was rejected by moderators.",
		MsgRateLimit:         "⏱ Please wait {cooldown} seconds before sending another message.",
		MsgInvalidLength:     "📝 Message must be between 5 and 1000 characters.",
		MsgCaptionTooLong:    "📝 Photo caption is too long. Shorten it or send the text without the photo.",
		MsgDMOnly:            "🔒 This bot works only in private messages.",
		MsgSuspiciousContent: "⚠️ Suspicious content detected.",
		MsgModNewConfession:  "📝 New confession for review:",
		MsgModApprove:        "✅ Approve",
		MsgModReject:         "❌ Reject",
		MsgModSpoiler:        "🙈 Spoiler",
		MsgPublishFailed:     "⚠️ Publishing failed, try again.",
		MsgAlreadyDecided:    "This confession was already decided.",
	},
	domain.LanguageUK: {
		MsgStart:             "🤐 Надішліть мені ваше анонімне зізнання.\n\nВаше повідомлення буде переглянуто модераторами перед публікацією.\n\nТа опубліковано тут: {channel}",
		MsgSentForModeration: "✅ Ваше повідомлення надіслано на модерацію.",
		MsgApproved:          "✅ Ваше зізнання опубліковано!",
		MsgRejected:          "❌ Ваше зізнання було відхилено модераторами.",
		MsgRateLimit:         "⏱ Зачекайте {cooldown} с перед надсиланням наступного повідомлення.",
		MsgInvalidLength:     "📝 Повідомлення має бути від 5 до 1000 символів.",
		MsgCaptionTooLong:    "📝 Підпис до фото задовгий. Скоротіть його або надішліть текст без фото.",
		MsgDMOnly:            "🔒 Цей бот працює тільки в особистих повідомленнях.",
		MsgSuspiciousContent: "⚠️ Виявлено підозрілий вміст.",
		MsgModNewConfession:  "📝 Нове зізнання на розгляд:",
		MsgModApprove:        "✅ Схвалити",
		MsgModReject:         "❌ Відхилити",
	},
	domain.LanguageRU: {
		MsgStart:             "🤐 Отправьте мне ваше анонимное признание.\n\nВаше сообщение будет рассмотрено модераторами перед публикацией.\n\nИ опубликовано тут: {channel}",
		MsgSentForModeration: "✅ Ваше сообщение отправлено на модерацию.",
		MsgApproved:          "✅ Ваше признание опубликовано!",
		MsgRejected:          "❌ Ваше признание было отклонено модераторами.",
		MsgRateLimit:         "⏱ Подождите {cooldown} с перед отправкой следующего сообщения.",
		MsgInvalidLength:     "📝 Сообщение должно быть от 5 до 1000 символов.",
		MsgCaptionTooLong:    "📝 Подпись к фото слишком длинная. Сократите её или отправьте текст без фото.",
		MsgDMOnly:            "🔒 Этот бот работает только в личных сообщениях.",
		MsgSuspiciousContent: "⚠️ Обнаружен подозрительный контент.",
		MsgModNewConfession:  "📝 Новое признание на рассмотрение:",
		MsgModApprove:        "✅ Одобрить",
		MsgModReject:         "❌ Отклонить",
	},
}

// Messages is the localized message catalog.
// Lookups fall back to English for unknown languages and missing keys.
type Messages struct {
	catalog  map[domain.Language]map[string]string
	channel  string
	cooldown time.Duration
}

// messagesFile is the YAML override layout:
//
//	en:
//	  start: "..."
//	uk:
//	  approved: "..."
type messagesFile map[string]map[string]string

// DefaultMessages returns the built-in catalog
func DefaultMessages(channel string) *Messages {
	if channel == "" {
		channel = DefaultChannelHandle
	}
	m := &Messages{
		catalog:  make(map[domain.Language]map[string]string, len(defaultCatalog)),
		channel:  channel,
		cooldown: DefaultRateLimitCooldown,
	}
	for lang, entries := range defaultCatalog {
		cp := make(map[string]string, len(entries))
		for k, v := range entries {
			cp[k] = v
		}
		m.catalog[lang] = cp
	}
	return m
}

// LoadMessages loads the catalog, applying YAML overrides from path if set
func LoadMessages(path, channel string) (*Messages, error) {
	m := DefaultMessages(channel)
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read messages config: %w", err)
	}
	if err := m.Merge(data); err != nil {
		return nil, err
	}
	return m, nil
}

// Merge applies YAML overrides on top of the catalog
func (m *Messages) Merge(data []byte) error {
	var overrides messagesFile
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse messages config: %w", err)
	}

	for rawLang, entries := range overrides {
		lang := domain.Language(strings.ToLower(rawLang))
		if !lang.IsValid() {
			return &ConfigError{Field: "MESSAGES_CONFIG_PATH", Message: "unsupported language " + rawLang}
		}
		if m.catalog[lang] == nil {
			m.catalog[lang] = make(map[string]string)
		}
		for key, text := range entries {
			if text == "" {
				continue
			}
			// Reviewable units are split by line position
			if key == MsgModNewConfession && strings.Contains(text, "\n") {
				return &ConfigError{Field: "MESSAGES_CONFIG_PATH", Message: key + " must be a single line"}
			}
			m.catalog[lang][key] = text
		}
	}
	return nil
}

// SetCooldown sets the sender cooldown quoted by the rate limit message
func (m *Messages) SetCooldown(d time.Duration) {
	m.cooldown = d
}

// Message returns the localized text for key
func (m *Messages) Message(lang domain.Language, key string) string {
	text, ok := m.catalog[lang][key]
	if !ok {
		text = m.catalog[domain.LanguageEN][key]
	}
	secs := strconv.Itoa(int(math.Ceil(m.cooldown.Seconds())))
	return strings.NewReplacer(channelPlaceholder, m.channel, cooldownPlaceholder, secs).Replace(text)
}
