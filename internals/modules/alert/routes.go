package alert

import (
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListAlerts)
	r.Delete("/{alertID}", h.DeleteAlert)

	return r
}

/*
- GET: /alerts?offset={}&limit={} -> list alerts across the user's monitors
- DELETE: /alerts/{alertID} -> delete one alert
*/
