// internal/matchwindow/handlers.go

package matchwindow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/auradating/aura-backend/internal/assessment"
	"github.com/auradating/aura-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateWindowRequest opens a window against one other user
type CreateWindowRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// CreateBatchRequest opens windows for all qualifying candidates
type CreateBatchRequest struct {
	UserID       int64   `json:"user_id" validate:"required,gt=0"`
	CandidateIDs []int64 `json:"candidate_ids" validate:"required,min=1,dive,gt=0"`
	MinOverall   float64 `json:"min_overall" validate:"gte=0,lte=100"`
}

func (h *Handler) CreateWindow(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req CreateWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	window, err := h.service.Create(r.Context(), userID, req.UserID)
	if err != nil {
		respondWindowError(w, err, "Failed to create match window")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, window)
}

func (h *Handler) GetWindow(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	windowID, err := parseWindowID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid window ID")
		return
	}

	window, err := h.service.Get(r.Context(), windowID, userID)
	if err != nil {
		respondWindowError(w, err, "Failed to get match window")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, window)
}

func (h *Handler) ConfirmWindow(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Confirm, "Failed to confirm match")
}

func (h *Handler) DeclineWindow(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Decline, "Failed to decline match")
}

func (h *Handler) ExtendWindow(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Extend, "Failed to extend match window")
}

func (h *Handler) GetPendingDecisions(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.PendingDecisions, "Failed to list pending decisions")
}

func (h *Handler) GetWaitingMatches(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.WaitingMatches, "Failed to list waiting matches")
}

func (h *Handler) GetConfirmedMatches(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ConfirmedMatches, "Failed to list confirmed matches")
}

func (h *Handler) GetPendingCount(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	count, err := h.service.PendingCount(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to count pending decisions")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]int64{"pending": count})
}

func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	windows, err := h.service.CreateBatch(r.Context(), req.UserID, req.CandidateIDs, req.MinOverall)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create match windows")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, windows)
}

func (h *Handler) GetWindowStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get window stats")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, windowID uuid.UUID, userID int64) (*Window, error), failMsg string) {

	userID := r.Context().Value("userID").(int64)

	windowID, err := parseWindowID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid window ID")
		return
	}

	window, err := op(r.Context(), windowID, userID)
	if err != nil {
		respondWindowError(w, err, failMsg)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, window)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, userID int64) ([]*Window, error), failMsg string) {

	userID := r.Context().Value("userID").(int64)

	windows, err := op(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, failMsg)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, windows)
}

func parseWindowID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["windowId"])
}

func respondWindowError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrWindowNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotParticipant):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrWindowExpired):
		utils.RespondWithError(w, http.StatusGone, err.Error())
	case errors.Is(err, ErrWindowClosed), errors.Is(err, ErrAlreadyExtended),
		errors.Is(err, ErrWindowExists), errors.Is(err, ErrConflict),
		errors.Is(err, assessment.ErrConflict):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, assessment.ErrSameUser):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, assessment.ErrGateNotApproved):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
