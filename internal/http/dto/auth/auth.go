// Package auth contiene DTOs de los endpoints /auth/* y /api/user.
package auth

import "github.com/dropDatabas3/habo/internal/domain/types"

// UserResponse es GET /api/user.
type UserResponse struct {
	Subject  string `json:"subject"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

func NewUserResponse(id types.Identity) UserResponse {
	return UserResponse{Subject: id.Subject, Email: id.Email, Username: id.Username}
}

// HomeResponse es GET /. UserInfo es la identidad de la sesión (null si no hay).
type HomeResponse struct {
	IsAuthenticated bool          `json:"isAuthenticated"`
	UserInfo        *UserResponse `json:"userInfo"`
}

// CallbackRequest son los query params del redirect del IdP.
type CallbackRequest struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}
