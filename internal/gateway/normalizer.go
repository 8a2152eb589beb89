package gateway

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"disasterhub/backend/pkg/models"
)

// ErrMissingInput is returned when no candidate field yields usable text.
var ErrMissingInput = errors.New("no input text found in request")

// Inbound payloads present the user's text under several alternative keys and
// nesting levels. Candidates are tried flat first, then under "content", then
// under "input.content"; within each level the first non-empty name wins.
var textCandidates = []string{"question", "text", "message", "prompt", "user_prompt", "query"}

// Normalize maps an arbitrary inbound payload to the canonical chat request.
// It is a pure transformation apart from minting a session id when the caller
// did not supply one.
func Normalize(raw map[string]any) (models.ChatRequest, error) {
	text := resolveText(raw)
	if text == "" {
		return models.ChatRequest{}, ErrMissingInput
	}

	req := models.ChatRequest{
		Text:      text,
		SessionID: resolveSessionID(raw),
		UserID:    resolveUserID(raw),
	}
	if ctx, ok := raw["context"].(map[string]any); ok {
		req.Context = ctx
	}
	return req, nil
}

func resolveText(raw map[string]any) string {
	if text := firstNonEmpty(raw); text != "" {
		return text
	}
	if content, ok := raw["content"].(map[string]any); ok {
		if text := firstNonEmpty(content); text != "" {
			return text
		}
	}
	if input, ok := raw["input"].(map[string]any); ok {
		if content, ok := input["content"].(map[string]any); ok {
			if text := firstNonEmpty(content); text != "" {
				return text
			}
		}
	}
	return ""
}

func firstNonEmpty(m map[string]any) string {
	for _, key := range textCandidates {
		if v, ok := m[key].(string); ok {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func resolveSessionID(raw map[string]any) string {
	if v, ok := raw["session_id"].(string); ok && v != "" {
		return v
	}
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func resolveUserID(raw map[string]any) string {
	if v, ok := raw["user_id"].(string); ok && v != "" {
		return v
	}
	if user, ok := raw["user"].(map[string]any); ok {
		if v, ok := user["id"].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
