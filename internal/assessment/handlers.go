package assessment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/auradating/aura-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	vars := mux.Vars(r)
	category := Category(strings.ToUpper(vars["category"]))

	list, err := h.service.GetQuestions(r.Context(), userID, category)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, list)
}

func (h *Handler) SubmitResponses(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req struct {
		Responses []*ResponseSubmission `json:"responses" validate:"required,min=1"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.SubmitResponses(r.Context(), userID, req.Responses)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to submit responses")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	progress, err := h.service.GetProgress(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get progress")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, progress)
}

func (h *Handler) ResetResponses(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	category := Category(strings.ToUpper(r.URL.Query().Get("category")))

	if err := h.service.ResetResponses(r.Context(), userID, category); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Responses reset")
}

func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	vars := mux.Vars(r)
	otherID, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	score, err := h.service.ComputeCompatibility(r.Context(), userID, otherID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSameUser):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrGateNotApproved):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrConflict):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to compute compatibility")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, score)
}

func (h *Handler) GetQuestionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.QuestionStats(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get question stats")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, stats)
}
