// Package handlers provides HTTP handlers for the video analysis API
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/alchemorsel/reelchef/internal/domain/video"
	"github.com/alchemorsel/reelchef/internal/ports/inbound"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxRequestBody = 1 << 20

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AnalyzeRequest is the body of the analyze and prescreen endpoints
type AnalyzeRequest struct {
	VideoID  string `json:"videoId" validate:"required"`
	VideoURL string `json:"videoUrl" validate:"required,url"`
}

// VideoResponse is the public view of a video record
type VideoResponse struct {
	ID        string       `json:"id"`
	Status    video.Status `json:"status"`
	VideoURL  string       `json:"videoUrl,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`

	*analysis.RecipeAnalysis
}

// VideoHandlers handles the video endpoints
type VideoHandlers struct {
	service   inbound.VideoAnalysisService
	prescreen inbound.PreScreenService
	fetcher   outbound.VideoFetcher
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewVideoHandlers creates the video handlers
func NewVideoHandlers(
	service inbound.VideoAnalysisService,
	prescreen inbound.PreScreenService,
	fetcher outbound.VideoFetcher,
	logger *zap.Logger,
) *VideoHandlers {
	return &VideoHandlers{
		service:   service,
		prescreen: prescreen,
		fetcher:   fetcher,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger.Named("video-handlers"),
	}
}

// Analyze handles POST /api/v1/videos/analyze. The pipeline runs synchronously.
func (h *VideoHandlers) Analyze(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	trigger := inbound.Trigger{
		Source:   inbound.TriggerHTTP,
		VideoID:  req.VideoID,
		VideoURL: req.VideoURL,
	}
	if err := h.service.Run(r.Context(), trigger); err != nil {
		h.logger.Error("Analysis failed", zap.String("video_id", req.VideoID), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Error: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true})
}

// PreScreen handles POST /api/v1/videos/prescreen
func (h *VideoHandlers) PreScreen(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	data, err := h.fetcher.Fetch(r.Context(), req.VideoURL)
	if err != nil {
		h.writeError(w, err)
		return
	}

	outcome, err := h.prescreen.ScreenAndAnalyze(r.Context(), data)
	if err != nil {
		h.logger.Error("Pre-screen failed", zap.String("video_id", req.VideoID), zap.Error(err))
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    outcome,
	})
}

// GetVideo handles GET /api/v1/videos/{id}
func (h *VideoHandlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	v, err := h.service.GetVideo(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: VideoResponse{
			ID:             v.ID,
			Status:         v.Status,
			VideoURL:       v.VideoURL,
			Error:          v.Error,
			CreatedAt:      v.CreatedAt,
			UpdatedAt:      v.UpdatedAt,
			RecipeAnalysis: v.Analysis,
		},
	})
}

func (h *VideoHandlers) decode(w http.ResponseWriter, r *http.Request) (AnalyzeRequest, bool) {
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: "invalid JSON body"})
		return req, false
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: validationError(err).Error()})
		return req, false
	}
	return req, true
}

func validationError(err error) *apperrors.AppError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error())
	}

	out := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		message := fe.Field() + " is required"
		if fe.Tag() != "required" {
			message = fe.Field() + " must be a valid " + fe.Tag()
		}
		out = append(out, apperrors.ValidationError{
			Field:   fe.Field(),
			Value:   fe.Value(),
			Tag:     fe.Tag(),
			Message: message,
		})
	}
	return apperrors.NewValidationErrors(out)
}

func (h *VideoHandlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if appErr, ok := apperrors.As(err); ok {
		status = appErr.StatusCode()
	}
	h.writeJSON(w, status, APIResponse{Success: false, Error: err.Error()})
}

// writeJSON writes a JSON response
func (h *VideoHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}
