package router

import (
	"net/http"

	"dia-relay/backend/app/controllers"
	"dia-relay/backend/app/middleware"
)

func NewRouter(httpCtrl *controllers.HTTPController, authCtrl *controllers.AuthController, statusCtrl *controllers.StatusController, cmdCtrl *controllers.CommandController, mw *middleware.Auth, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, middleware.WithRoute(pattern, h))
	}

	// public
	handle("/ping", http.HandlerFunc(httpCtrl.Ping))
	handle("/login", http.HandlerFunc(authCtrl.Login))

	// dashboard queries
	handle("/api/clients", http.HandlerFunc(statusCtrl.Clients))
	handle("/api/dia-history", http.HandlerFunc(statusCtrl.DiaHistory))
	handle("/api/liveness", http.HandlerFunc(statusCtrl.Liveness))

	// command endpoints (admin only)
	handle("/admin/command", mw.RequireAdmin(http.HandlerFunc(cmdCtrl.Post)))
	handle("/admin/command/history", mw.RequireAdmin(http.HandlerFunc(cmdCtrl.History)))

	if metricsHandler != nil {
		handle("/metrics", metricsHandler)
	}
	return mux
}
