package monitor

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateMonitor)
	r.Get("/", h.GetAllMonitors)
	r.Get("/{monitorID}", h.GetMonitor)
	r.Put("/{monitorID}", h.UpdateMonitor)
	r.Patch("/{monitorID}/active", h.SetMonitorActive)
	r.Delete("/{monitorID}", h.DeleteMonitor)
	r.Get("/{monitorID}/status", h.GetLatestStatus)

	return r
}

/*
- POST: /monitors -> create monitor
- GET: /monitors?offset={}&limit={} -> list monitors of a user
- GET: /monitors/{monitorID} -> get one monitor
- PUT: /monitors/{monitorID} -> update url/interval/threshold/active
- PATCH: /monitors/{monitorID}/active -> pause or resume polling
- DELETE: /monitors/{monitorID} -> delete (logs and alerts cascade)
- GET: /monitors/{monitorID}/status -> cached latest observation
*/
