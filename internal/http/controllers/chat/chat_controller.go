// Package chat contiene el controller de POST /api/chat.
package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/habo/internal/http/dto/chat"
	httperrors "github.com/dropDatabas3/habo/internal/http/errors"
	"github.com/dropDatabas3/habo/internal/http/helpers"
	svc "github.com/dropDatabas3/habo/internal/http/services/chat"
	"github.com/dropDatabas3/habo/internal/observability/logger"
	"github.com/dropDatabas3/habo/internal/upstream"
)

var (
	errInvalidMessage = httperrors.ErrBadRequest.WithMessage("Invalid message")
	errChatUpstream   = httperrors.ErrUpstreamUnavailable.WithMessage("Failed to generate AI response")
)

type ChatController struct {
	service svc.ChatService
}

func NewChatController(service svc.ChatService) *ChatController {
	return &ChatController{service: service}
}

// Chat requiere identidad (RequireIdentity en la ruta).
func (c *ChatController) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ChatController.Chat"))

	var req dto.ChatRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	var message string
	if len(req.Message) == 0 || json.Unmarshal(req.Message, &message) != nil {
		httperrors.WriteError(w, errInvalidMessage)
		return
	}

	reply, err := c.service.Reply(ctx, message)
	switch {
	case err == nil:
	case errors.Is(err, svc.ErrInvalidMessage):
		httperrors.WriteError(w, errInvalidMessage)
		return
	case errors.Is(err, upstream.ErrUnavailable):
		httperrors.WriteError(w, errChatUpstream.WithDetail(err.Error()).WithCause(err))
		return
	default:
		log.Error("chat failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.ChatResponse{Message: reply})
}
