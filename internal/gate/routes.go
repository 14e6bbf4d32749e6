package gate

import (
	"github.com/gorilla/mux"

	"github.com/auradating/aura-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/gate").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Assessment steps
	api.HandleFunc("/status", handler.GetStatus).Methods("GET")
	api.HandleFunc("/assessment", handler.GetAssessment).Methods("GET")
	api.HandleFunc("/assessment/economic", handler.SubmitEconomicInputs).Methods("PUT")
	api.HandleFunc("/assessment/political", handler.SubmitPoliticalValues).Methods("PUT")
	api.HandleFunc("/assessment/reproductive", handler.SubmitReproductiveView).Methods("PUT")
	api.HandleFunc("/assessment/explanation", handler.SubmitExplanation).Methods("PUT")
	api.HandleFunc("/assessment/verification", handler.SubmitVerificationDocument).Methods("POST")
	api.HandleFunc("/evaluate", handler.Evaluate).Methods("POST")

	// Admin review
	admin := router.PathPrefix("/api/v1/admin/gate").Subrouter()
	admin.Use(authMiddleware.Authenticate)
	admin.Use(authMiddleware.RequireAdmin)

	admin.HandleFunc("/reviews", handler.ListPendingReview).Methods("GET")
	admin.HandleFunc("/reviews/{userId}/explanation", handler.ReviewExplanation).Methods("POST")
	admin.HandleFunc("/reviews/{userId}/verification", handler.ReviewVerification).Methods("POST")
	admin.HandleFunc("/stats", handler.GetStats).Methods("GET")
}
