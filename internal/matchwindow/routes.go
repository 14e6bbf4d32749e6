package matchwindow

import (
	"github.com/gorilla/mux"

	"github.com/auradating/aura-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/windows").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.CreateWindow).Methods("POST")
	api.HandleFunc("/pending", handler.GetPendingDecisions).Methods("GET")
	api.HandleFunc("/pending/count", handler.GetPendingCount).Methods("GET")
	api.HandleFunc("/waiting", handler.GetWaitingMatches).Methods("GET")
	api.HandleFunc("/confirmed", handler.GetConfirmedMatches).Methods("GET")
	api.HandleFunc("/{windowId}", handler.GetWindow).Methods("GET")
	api.HandleFunc("/{windowId}/confirm", handler.ConfirmWindow).Methods("POST")
	api.HandleFunc("/{windowId}/decline", handler.DeclineWindow).Methods("POST")
	api.HandleFunc("/{windowId}/extend", handler.ExtendWindow).Methods("POST")

	admin := router.PathPrefix("/api/v1/admin/windows").Subrouter()
	admin.Use(authMiddleware.Authenticate)
	admin.Use(authMiddleware.RequireAdmin)

	admin.HandleFunc("/batch", handler.CreateBatch).Methods("POST")
	admin.HandleFunc("/stats", handler.GetWindowStats).Methods("GET")
}
