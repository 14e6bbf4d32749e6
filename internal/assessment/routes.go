package assessment

import (
	"github.com/gorilla/mux"

	"github.com/auradating/aura-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/assessment").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/questions/{category}", handler.GetQuestions).Methods("GET")
	api.HandleFunc("/responses", handler.SubmitResponses).Methods("POST")
	api.HandleFunc("/responses", handler.ResetResponses).Methods("DELETE")
	api.HandleFunc("/progress", handler.GetProgress).Methods("GET")
	api.HandleFunc("/compatibility/{userId}", handler.GetCompatibility).Methods("GET")

	admin := router.PathPrefix("/api/v1/admin/assessment").Subrouter()
	admin.Use(authMiddleware.Authenticate)
	admin.Use(authMiddleware.RequireAdmin)

	admin.HandleFunc("/stats", handler.GetQuestionStats).Methods("GET")
}
