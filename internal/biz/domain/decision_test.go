package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionToken_RoundTrip(t *testing.T) {
	createdAt := time.Unix(1700000000, 0)

	for _, action := range Actions {
		for _, lang := range []Language{LanguageEN, LanguageUK, LanguageRU} {
			token := NewDecisionToken(action, 123456789, lang, createdAt)

			parsed, err := ParseDecisionToken(token.Encode())
			require.NoError(t, err)
			assert.Equal(t, token, parsed)
			assert.Equal(t, int64(123456789), parsed.SenderID)
			assert.Equal(t, lang, parsed.Language)
			assert.Equal(t, createdAt, parsed.CreatedAt())
		}
	}
}

func TestDecisionToken_Encode(t *testing.T) {
	token := NewDecisionToken(ActionApprove, 42, LanguageEN, time.Unix(1700000000, 0))
	assert.Equal(t, "approve_42_en_1700000000", token.Encode())
}

func TestDecisionToken_FitsCallbackData(t *testing.T) {
	token := NewDecisionToken(ActionSpoiler, 9223372036854775807, LanguageUK, time.Unix(9223372036, 0))
	assert.LessOrEqual(t, len(token.Encode()), 64)
}

func TestParseDecisionToken_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"too few fields":   "approve_42_en",
		"too many fields":  "approve_42_en_1700000000_x",
		"unknown action":   "publish_42_en_1700000000",
		"negative sender":  "approve_-42_en_1700000000",
		"zero sender":      "approve_0_en_1700000000",
		"signed sender":    "approve_+42_en_1700000000",
		"non numeric":      "approve_abc_en_1700000000",
		"unknown language": "approve_42_de_1700000000",
		"upper language":   "approve_42_EN_1700000000",
		"bad timestamp":    "approve_42_en_soon",
		"empty timestamp":  "approve_42_en_",
		"overflow sender":  "approve_99999999999999999999_en_1700000000",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDecisionToken(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedDecision))
		})
	}
}

func TestAction_IsValid(t *testing.T) {
	assert.True(t, ActionApprove.IsValid())
	assert.True(t, ActionSpoiler.IsValid())
	assert.True(t, ActionReject.IsValid())
	assert.False(t, Action("delete").IsValid())
}
