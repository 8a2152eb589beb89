package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"disasterhub/backend/internal/gateway"
)

// HandleChat normalizes an arbitrary inbound chat payload and relays it to the
// conversational backend. Upstream failures still yield a well-formed chat
// response so clients always have something to render.
// (POST /api/chat)
func (s *Server) HandleChat(c echo.Context) error {
	var raw map[string]any
	if err := c.Bind(&raw); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
	}

	req, err := gateway.Normalize(raw)
	if err != nil {
		return domainError(c, err)
	}

	resp, err := s.Chat.Call(c.Request().Context(), req, s.ChatConfig.Endpoint, s.ChatConfig.Options)
	if err != nil {
		log.Warn().
			Err(err).
			Str("sessionID", req.SessionID).
			Msg("API: chat relay failed")
		status := http.StatusBadGateway
		if errors.Is(err, gateway.ErrUpstreamError) {
			status = http.StatusOK
		}
		// The failure envelope is still the response body.
		return c.JSON(status, resp)
	}

	return c.JSON(http.StatusOK, resp)
}
