package auth

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/habo/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/habo/internal/http/errors"
	svc "github.com/dropDatabas3/habo/internal/http/services/auth"
	"github.com/dropDatabas3/habo/internal/observability/logger"
	"github.com/dropDatabas3/habo/internal/session"
)

// CallbackController maneja GET /auth/callback. Los errores van en texto
// plano porque el browser llega acá desde el IdP, no desde la SPA.
type CallbackController struct {
	service  svc.CallbackService
	sessions SessionStore
}

func NewCallbackController(service svc.CallbackService, sessions SessionStore) *CallbackController {
	return &CallbackController{service: service, sessions: sessions}
}

func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CallbackController.Callback"))

	s := session.FromContext(ctx)
	if s == nil {
		httperrors.WriteText(w, errors.New("session middleware not installed"))
		return
	}

	q := r.URL.Query()
	res, err := c.service.Complete(ctx, s, dto.CallbackRequest{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	})
	if err != nil {
		httperrors.WriteText(w, err)
		return
	}

	if err := c.sessions.Save(ctx, w, s); err != nil {
		// el bearer alcanza para la SPA
		log.Warn("session save failed after login", logger.Err(err))
	}
	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}
