package domain

import (
	"strings"
	"unicode/utf8"
)

// Body length bounds, in characters
const (
	MinBodyLength = 5
	MaxBodyLength = 1000
)

// Language is the closed set of supported sender languages
type Language string

const (
	LanguageEN Language = "en"
	LanguageUK Language = "uk"
	LanguageRU Language = "ru"
)

// ParseLanguage derives the sender language from a platform language hint.
// Unknown or empty hints fall back to English.
func ParseLanguage(hint string) Language {
	lang := strings.ToLower(hint)
	switch {
	case strings.HasPrefix(lang, "uk"):
		return LanguageUK
	case strings.HasPrefix(lang, "ru"):
		return LanguageRU
	default:
		return LanguageEN
	}
}

// IsValid checks if the language belongs to the supported set
func (l Language) IsValid() bool {
	switch l {
	case LanguageEN, LanguageUK, LanguageRU:
		return true
	}
	return false
}

// Tag returns the uppercase tag shown to moderators
func (l Language) Tag() string {
	return strings.ToUpper(string(l))
}

// Submission is an anonymous message awaiting admission. It is never persisted.
type Submission struct {
	SenderID   int64
	Language   Language
	Body       string
	Attachment string // Photo file handle, largest variant
}

// HasAttachment checks if a photo is attached
func (s *Submission) HasAttachment() bool {
	return s.Attachment != ""
}

// BodyLength returns the body length in characters
func (s *Submission) BodyLength() int {
	return utf8.RuneCountInString(s.Body)
}

// NewSubmission builds a submission from an inbound private message
func NewSubmission(msg *InboundMessage) *Submission {
	return &Submission{
		SenderID:   msg.SenderID,
		Language:   ParseLanguage(msg.LanguageHint),
		Body:       msg.Text,
		Attachment: msg.LargestPhoto(),
	}
}
