package handler

import "net/http"

// HealthPath is served without credentials
const HealthPath = "/api/health"

// Handlers bundles the HTTP handlers the API serves
type Handlers struct {
	Chat     *ChatHandler
	Generate *GenerateHandler
	Models   *ModelsHandler
}

// NewRouter registers every route (Go 1.22+ method patterns)
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+HealthPath, HealthCheck)

	// Chat routes
	mux.HandleFunc("GET /api/chats", h.Chat.ListChats)
	mux.HandleFunc("POST /api/chats", h.Chat.CreateChat)
	mux.HandleFunc("GET /api/chats/{id}", h.Chat.GetChat)
	mux.HandleFunc("PUT /api/chats/{id}", h.Chat.UpdateChat)
	mux.HandleFunc("DELETE /api/chats/{id}", h.Chat.DeleteChat)

	// Generation
	mux.HandleFunc("POST /api/generate", h.Generate.Generate)
	mux.HandleFunc("GET /api/models", h.Models.GetModels)

	return mux
}
