package models

import (
	"time"
)

// ChatRequest is the one canonical shape relayed to the conversational
// backend, independent of how the caller originally phrased the input.
type ChatRequest struct {
	Text      string         `json:"text"`
	SessionID string         `json:"session_id"`
	UserID    string         `json:"user_id,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

// ChatResponse is returned for every relay call, success or failure. Reply is
// never empty: on failure it carries a clearly marked error text so the
// caller always has something to show.
type ChatResponse struct {
	Success   bool      `json:"success"`
	Reply     string    `json:"reply"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	ElapsedMs int64     `json:"elapsed_ms"`
	Timestamp time.Time `json:"timestamp"`
}
