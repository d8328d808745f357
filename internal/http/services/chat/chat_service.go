// Package chat contiene el service del asistente Habo AI.
package chat

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dropDatabas3/habo/internal/observability/logger"
)

const MaxMessageLen = 4000

var ErrInvalidMessage = errors.New("message is required and must be a non-empty string")

// Completer es el cliente upstream (upstream/chat.Client).
type Completer interface {
	Complete(ctx context.Context, message string) (string, error)
}

type ChatService interface {
	Reply(ctx context.Context, message string) (string, error)
}

type Deps struct {
	Client Completer
}

type chatService struct {
	deps Deps
}

func NewChatService(deps Deps) ChatService {
	return &chatService{deps: deps}
}

func (s *chatService) Reply(ctx context.Context, message string) (string, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("chat"),
		logger.Op("Reply"),
	)

	message = strings.TrimSpace(message)
	if message == "" || utf8.RuneCountInString(message) > MaxMessageLen {
		return "", ErrInvalidMessage
	}

	reply, err := s.deps.Client.Complete(ctx, message)
	if err != nil {
		log.Error("chat completion failed", logger.Err(err))
		return "", err
	}
	log.Debug("chat completion ok", logger.Int("reply_len", len(reply)))
	return reply, nil
}
