package errors

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// WriteError escribe {"error","code","detail"} con el status del AppError.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:  appErr.Message,
		Code:   appErr.Code,
		Detail: appErr.Detail,
	})
}

// WriteText escribe "<message>: <detail>" en texto plano. Lo usa el callback
// OIDC, que termina en una página de error del browser y no en la SPA.
func WriteText(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	body := appErr.Message
	if appErr.Detail != "" {
		body += ": " + appErr.Detail
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(appErr.HTTPStatus)
	_, _ = w.Write([]byte(body))
}
