// Package handlers provides HTTP handlers for the web API.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/kozaktomas/faceid/internal/database"
	"github.com/kozaktomas/faceid/internal/embedding"
	"github.com/kozaktomas/faceid/internal/faceimage"
	"github.com/kozaktomas/faceid/internal/matcher"
	"github.com/kozaktomas/faceid/internal/recognition"
)

// FacesHandler handles enrollment and identification endpoints.
type FacesHandler struct {
	service *recognition.Service
}

// NewFacesHandler creates a new faces handler
func NewFacesHandler(service *recognition.Service) *FacesHandler {
	return &FacesHandler{service: service}
}

type landmarksPayload struct {
	Points embedding.LandmarkSet `json:"points" validate:"required"`
}

type imagePayload struct {
	Data   []float64 `json:"data" validate:"required"`
	Width  int       `json:"width" validate:"gt=0,lte=16384"`
	Height int       `json:"height" validate:"gt=0,lte=16384"`
}

type registerRequest struct {
	Name          string            `json:"name" validate:"required,notblank,max=128"`
	Landmarks     *landmarksPayload `json:"landmarks" validate:"required"`
	FaceImageData *imagePayload     `json:"faceImageData" validate:"required"`
}

type recognizeRequest struct {
	Landmarks     *landmarksPayload `json:"landmarks" validate:"required"`
	FaceImageData *imagePayload     `json:"faceImageData" validate:"required"`
	Threshold     *float64          `json:"threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
}

type registerResponse struct {
	Success         bool   `json:"success"`
	ID              string `json:"id"`
	Message         string `json:"message"`
	EmbeddingLength int    `json:"embeddingLength"`
}

type matchInfo struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Similarity float64    `json:"similarity"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

type recognizeResponse struct {
	Success    bool                `json:"success"`
	Registered bool                `json:"registered"`
	Match      *matchInfo          `json:"match"`
	Outcome    matcher.Outcome     `json:"outcome"`
	Similarity float64             `json:"similarity"`
	Message    string              `json:"message"`
	Decision   matcher.MatchResult `json:"decision"`
}

type faceSummary struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	CreatedAt       time.Time `json:"createdAt"`
	EmbeddingLength int       `json:"embeddingLength"`
}

type listResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Faces   []faceSummary `json:"faces"`
}

// landmarkCountError is the 400 body for a mesh with too few points.
type landmarkCountError struct {
	Error    string `json:"error"`
	Received int    `json:"received"`
	Expected int    `json:"expected"`
}

func summarize(tpl *database.EnrolledTemplate) faceSummary {
	return faceSummary{
		ID:              tpl.ID,
		Name:            tpl.Name,
		CreatedAt:       tpl.CreatedAt,
		EmbeddingLength: len(tpl.Embedding),
	}
}

// probeFromRequest converts the wire payloads into a probe. It writes the error
// response itself and returns false when the input is unusable.
func probeFromRequest(w http.ResponseWriter, lm *landmarksPayload, img *imagePayload) (recognition.Probe, bool) {
	points := lm.Points.TrimIris()
	if len(points) < embedding.MeshLandmarkCount {
		respondJSON(w, http.StatusBadRequest, landmarkCountError{
			Error:    fmt.Sprintf("Invalid landmarks: must have %d points, received %d", embedding.MeshLandmarkCount, len(points)),
			Received: len(points),
			Expected: embedding.MeshLandmarkCount,
		})
		return recognition.Probe{}, false
	}

	face, err := faceimage.FromValues(img.Data, img.Width, img.Height)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return recognition.Probe{}, false
	}

	return recognition.Probe{Landmarks: points, Image: face}, true
}

// Register enrolls a new face under the given name.
func (h *FacesHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	probe, ok := probeFromRequest(w, req.Landmarks, req.FaceImageData)
	if !ok {
		return
	}

	tpl, err := h.service.Enroll(r.Context(), req.Name, probe)
	if err != nil {
		respondServiceError(w, err, "failed to register face")
		return
	}

	respondJSON(w, http.StatusOK, registerResponse{
		Success:         true,
		ID:              tpl.ID,
		Message:         "Face registered successfully",
		EmbeddingLength: len(tpl.Embedding),
	})
}

// Recognize identifies a face against every enrolled template.
// Decision outcomes are always 200; only bad input and failures use error statuses.
func (h *FacesHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	var req recognizeRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	probe, ok := probeFromRequest(w, req.Landmarks, req.FaceImageData)
	if !ok {
		return
	}

	var threshold float64
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	result, err := h.service.Identify(r.Context(), probe, threshold)
	if err != nil {
		respondServiceError(w, err, "failed to recognize face")
		return
	}

	resp := recognizeResponse{
		Success:    result.Accepted(),
		Registered: result.Accepted(),
		Outcome:    result.Outcome,
		Similarity: result.Similarity,
		Decision:   result,
	}

	switch result.Outcome {
	case matcher.OutcomeMatched:
		match := &matchInfo{
			ID:         result.CandidateID,
			Name:       result.CandidateName,
			Similarity: result.Similarity,
		}
		// The decision stands even if the template vanished in between.
		if tpl, err := h.service.Get(r.Context(), result.CandidateID); err == nil {
			match.CreatedAt = &tpl.CreatedAt
		} else if !errors.Is(err, database.ErrNotFound) {
			log.WithError(err).Warn("Failed to load matched template")
		}
		resp.Match = match
		resp.Message = "Face recognized as " + result.CandidateName
	case matcher.OutcomeEmptyGallery:
		resp.Message = "No users registered in database"
	case matcher.OutcomeAmbiguous:
		resp.Message = "Face not recognized - too close to another enrolled face"
	default:
		resp.Message = "Face not recognized - no match found"
	}

	respondJSON(w, http.StatusOK, resp)
}

// List returns all enrolled faces without their embeddings.
func (h *FacesHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.List(r.Context())
	if err != nil {
		respondServiceError(w, err, "failed to list faces")
		return
	}

	faces := make([]faceSummary, len(templates))
	for i := range templates {
		faces[i] = summarize(&templates[i])
	}

	respondJSON(w, http.StatusOK, listResponse{Success: true, Count: len(faces), Faces: faces})
}

// Get returns one enrolled face.
func (h *FacesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tpl, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "face not found")
			return
		}
		respondServiceError(w, err, "failed to get face")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "face": summarize(tpl)})
}

// Delete removes one enrolled face.
func (h *FacesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "face not found")
			return
		}
		log.WithField("id", sanitizeForLog(id)).WithError(err).Error("Failed to delete face")
		respondServiceError(w, err, "failed to delete face")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
