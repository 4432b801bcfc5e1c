package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Action is a moderator decision
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionSpoiler Action = "spoiler"
)

// Actions lists the actions in button order
var Actions = []Action{ActionApprove, ActionSpoiler, ActionReject}

// IsValid checks if the action is known
func (a Action) IsValid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionSpoiler:
		return true
	}
	return false
}

// tokenSeparator never occurs in any token field: actions and languages are
// lowercase letters, ids and timestamps are decimal integers.
const tokenSeparator = "_"

// DecisionToken correlates a moderator action with the original sender
type DecisionToken struct {
	Action    Action
	SenderID  int64
	Language  Language
	Timestamp int64 // Unix seconds when the reviewable unit was created
}

// NewDecisionToken creates a token for the given action
func NewDecisionToken(action Action, senderID int64, lang Language, createdAt time.Time) DecisionToken {
	return DecisionToken{
		Action:    action,
		SenderID:  senderID,
		Language:  lang,
		Timestamp: createdAt.Unix(),
	}
}

// Encode renders the token as button callback data
func (t DecisionToken) Encode() string {
	return strings.Join([]string{
		string(t.Action),
		strconv.FormatInt(t.SenderID, 10),
		string(t.Language),
		strconv.FormatInt(t.Timestamp, 10),
	}, tokenSeparator)
}

// CreatedAt returns the creation time of the reviewable unit
func (t DecisionToken) CreatedAt() time.Time {
	return time.Unix(t.Timestamp, 0)
}

// ParseDecisionToken decodes callback data produced by Encode
func ParseDecisionToken(raw string) (DecisionToken, error) {
	parts := strings.Split(raw, tokenSeparator)
	if len(parts) != 4 {
		return DecisionToken{}, fmt.Errorf("%w: expected 4 fields, got %d", ErrMalformedDecision, len(parts))
	}

	action := Action(parts[0])
	if !action.IsValid() {
		return DecisionToken{}, fmt.Errorf("%w: unknown action %q", ErrMalformedDecision, parts[0])
	}

	senderID, err := parseDecimal(parts[1])
	if err != nil || senderID <= 0 {
		return DecisionToken{}, fmt.Errorf("%w: bad sender id", ErrMalformedDecision)
	}

	lang := Language(parts[2])
	if !lang.IsValid() {
		return DecisionToken{}, fmt.Errorf("%w: unknown language %q", ErrMalformedDecision, parts[2])
	}

	ts, err := parseDecimal(parts[3])
	if err != nil {
		return DecisionToken{}, fmt.Errorf("%w: bad timestamp", ErrMalformedDecision)
	}

	return DecisionToken{
		Action:    action,
		SenderID:  senderID,
		Language:  lang,
		Timestamp: ts,
	}, nil
}

// parseDecimal accepts plain decimal digits only (no sign, no whitespace)
func parseDecimal(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}
	return strconv.ParseInt(s, 10, 64)
}
