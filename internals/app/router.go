package app

import (
	"net/http"
	"time"

	middle "apiwatch/internals/middleware"
	"apiwatch/internals/modules/alert"
	"apiwatch/internals/modules/analytics"
	"apiwatch/internals/modules/monitor"
	"apiwatch/internals/modules/user"
	"apiwatch/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(c *Container) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middle.Logger(c.Logger))
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		reqID := middleware.GetReqID(req.Context())
		utils.WriteJSON(w, http.StatusOK, reqID, "ok", "healthy")
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Mount("/users", user.Routes(c.userHandler, c.authMW))

		v1.With(c.authMW.Handle).
			Mount("/monitors", monitor.Routes(c.monitorHandler))

		v1.With(c.authMW.Handle).
			Mount("/alerts", alert.Routes(c.alertHandler))

		v1.With(c.authMW.Handle).
			Mount("/analytics", analytics.Routes(c.analyticsHandler))
	})

	return r
}
