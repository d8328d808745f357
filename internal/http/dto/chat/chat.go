// Package chat contiene DTOs de POST /api/chat.
package chat

import "encoding/json"

// ChatRequest se decodifica como RawMessage para distinguir "message" ausente
// de uno que no es string.
type ChatRequest struct {
	Message json.RawMessage `json:"message"`
}

// ChatResponse usa "message" porque es lo que lee el frontend.
type ChatResponse struct {
	Message string `json:"message"`
}
