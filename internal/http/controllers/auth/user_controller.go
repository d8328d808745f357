package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/habo/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/habo/internal/http/errors"
	"github.com/dropDatabas3/habo/internal/http/helpers"
	mw "github.com/dropDatabas3/habo/internal/http/middlewares"
	"github.com/dropDatabas3/habo/internal/session"
)

// UserController maneja GET /api/user y GET /.
type UserController struct{}

func NewUserController() *UserController { return &UserController{} }

// Me devuelve la identidad resuelta (bearer primero, después sesión).
func (c *UserController) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := mw.GetIdentity(r.Context())
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.NewUserResponse(id))
}

// Home: isAuthenticated por cualquier resolver, userInfo solo de la sesión.
func (c *UserController) Home(w http.ResponseWriter, r *http.Request) {
	_, authenticated := mw.GetIdentity(r.Context())
	resp := dto.HomeResponse{IsAuthenticated: authenticated}
	if id, ok := session.FromContext(r.Context()).UserInfo(); ok {
		u := dto.NewUserResponse(id)
		resp.UserInfo = &u
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}
