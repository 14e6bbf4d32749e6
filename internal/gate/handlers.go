package gate

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/auradating/aura-backend/internal/common/utils"
)

// maxVerificationDocSize caps verification uploads at 10MB
const maxVerificationDocSize = 10 << 20

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	status, err := h.service.Status(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get gate status")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, status)
}

func (h *Handler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	assessment, err := h.service.GetOrCreate(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get assessment")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, assessment)
}

func (h *Handler) SubmitEconomicInputs(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req EconomicInputsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	assessment, err := h.service.SubmitEconomicInputs(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrInvalidBracket) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to submit economic inputs")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, assessment)
}

func (h *Handler) SubmitPoliticalValues(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req PoliticalValuesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	assessment, err := h.service.SubmitPoliticalValues(r.Context(), userID, &req)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to submit political values")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, assessment)
}

func (h *Handler) SubmitReproductiveView(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req ReproductiveViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	assessment, err := h.service.SubmitReproductiveView(r.Context(), userID, &req)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to submit reproductive view")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, assessment)
}

func (h *Handler) SubmitExplanation(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req struct {
		Explanation string `json:"explanation" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	assessment, err := h.service.SubmitExplanation(r.Context(), userID, req.Explanation)
	if err != nil {
		if errors.Is(err, ErrExplanationTooShort) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to submit explanation")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, assessment)
}

func (h *Handler) SubmitVerificationDocument(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	if err := r.ParseMultipartForm(maxVerificationDocSize); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing document file")
		return
	}
	defer file.Close()

	assessment, err := h.service.SubmitVerificationDocument(r.Context(), userID, file, header)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to upload document")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, assessment)
}

func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	status, err := h.service.Evaluate(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrAssessmentNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to evaluate gate")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

// Admin handlers

type reviewRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

func (h *Handler) ReviewExplanation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	targetID, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	assessment, err := h.service.ReviewExplanation(r.Context(), targetID, req.Approve, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, ErrAssessmentNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNothingToReview):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to review explanation")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, assessment)
}

func (h *Handler) ReviewVerification(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	targetID, err := strconv.ParseInt(vars["userId"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	assessment, err := h.service.ReviewVerification(r.Context(), targetID, req.Approve, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, ErrAssessmentNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNothingToReview):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to review verification")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, assessment)
}

func (h *Handler) ListPendingReview(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil {
			offset = v
		}
	}

	assessments, err := h.service.ListPendingReview(r.Context(), limit, offset)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list pending reviews")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, assessments)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get gate stats")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, stats)
}
