package assessment

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers assessment session and catalog routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/assessments", h.ListAssessments)

	r.Route("/assessment-sessions", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Get("/{id}", h.GetSession)
		r.Post("/{id}/profile", h.SubmitProfile)
		r.Post("/{id}/assessment", h.SelectAssessment)
		r.Post("/{id}/answer", h.SubmitAnswer)
		r.Post("/{id}/restart", h.Restart)
		r.Post("/{id}/playback", h.TogglePlayback)
		r.Get("/{id}/audio", h.GetAudio)
		r.Post("/{id}/audio/ended", h.AudioEnded)
		r.Post("/{id}/notify", h.SendResults)
		r.Get("/{id}/report", h.GetReport)
	})
}
