package websocket

import "github.com/stemsi/kumpul-tugas/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError      Event = "error"
	EventReady      Event = "ready"
	EventSubmission Event = "submission"
	EventPong       Event = "pong"
)

// ReadyResponse is sent once after the feed subscription is established.
type ReadyResponse struct {
	Event     Event  `json:"event"`
	SessionID string `json:"session_id"`
}

// SubmissionEvent announces one newly stored submission.
type SubmissionEvent struct {
	Event      Event            `json:"event"`
	Submission model.Submission `json:"submission"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
