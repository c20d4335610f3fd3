package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Interaction types published to the event stream.
const (
	InteractionSelectRegion = "select_region"
	InteractionSelectFire   = "select_fire"
	InteractionSetYear      = "set_year"
	InteractionSetMode      = "set_mode"
	InteractionClear        = "clear"
	InteractionSearch       = "search"
)

// InteractionEvent records one user interaction with a session. Events are
// published for analytics and never read back.
type InteractionEvent struct {
	ID         string     `json:"id"`
	SessionID  string     `json:"session_id"`
	Type       string     `json:"type"`
	Kind       RegionKind `json:"kind,omitempty"`
	Target     string     `json:"target,omitempty"`
	Year       int        `json:"year,omitempty"`
	Outcome    string     `json:"outcome"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewInteractionEvent stamps an event with the current time and a
// deterministic ID derived from its fields, so replays deduplicate downstream.
func NewInteractionEvent(sessionID, typ string, kind RegionKind, target string, year int, outcome string) InteractionEvent {
	at := now()
	input := fmt.Sprintf("%s|%s|%s|%s|%d|%s|%d", sessionID, typ, kind, target, year, outcome, at.UnixNano())
	sum := sha256.Sum256([]byte(input))
	return InteractionEvent{
		ID:         typ + "-" + hex.EncodeToString(sum[:8]),
		SessionID:  sessionID,
		Type:       typ,
		Kind:       kind,
		Target:     target,
		Year:       year,
		Outcome:    outcome,
		OccurredAt: at,
	}
}
