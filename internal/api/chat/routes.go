package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat workspace routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/chat-workspaces", func(r chi.Router) {
		r.Post("/", h.CreateWorkspace)
		r.Get("/{id}", h.GetWorkspace)
		r.Post("/{id}/conversations", h.NewConversation)
		r.Post("/{id}/conversations/{conversation_id}/select", h.SelectConversation)
		r.Delete("/{id}/conversations/{conversation_id}", h.DeleteConversation)
		r.Delete("/{id}/conversations", h.ClearConversations)
		r.Post("/{id}/ask", h.Ask)
		r.Get("/{id}/audio", h.GetAudio)
		r.Post("/{id}/audio/ended", h.AudioEnded)
		r.Post("/{id}/audio/stop", h.StopPlayback)
	})
}
