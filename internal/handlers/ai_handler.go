package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/studytrack/studytrack-backend/internal/models"
	"github.com/studytrack/studytrack-backend/internal/services"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// AIHandler handles the assistant endpoints. One handler serves all five
// response kinds; routes bind a kind with GenerateHandler/ListHandler.
type AIHandler struct {
	Service *services.AIService
}

// NewAIHandler creates a new instance of AIHandler.
func NewAIHandler(service *services.AIService) *AIHandler {
	return &AIHandler{Service: service}
}

// GenerateHandler returns a handler that generates and stores an answer of
// the given kind.
func (h *AIHandler) GenerateHandler(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authenticatedObjectID(w, r)
		if !ok {
			return
		}

		var body struct {
			Topic   string `json:"topic"`
			Context string `json:"context"`
			// The summarize endpoint sends its material as "text".
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		topic := body.Topic
		if kind == models.AIKindSummary && topic == "" {
			topic = body.Text
		}

		resp, err := h.Service.Generate(r.Context(), userID, kind, topic, body.Context)
		if err != nil {
			logrus.WithError(err).WithField("kind", kind).Error("AI generation failed")
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(resp)
	}
}

// ListHandler returns a handler that lists the user's stored answers of the
// given kind.
func (h *AIHandler) ListHandler(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authenticatedObjectID(w, r)
		if !ok {
			return
		}

		responses, err := h.Service.List(r.Context(), userID, kind)
		if err != nil {
			logrus.WithError(err).Error("Failed to list AI responses")
			http.Error(w, "Failed to fetch responses", http.StatusInternalServerError)
			return
		}

		if responses == nil {
			responses = []models.AIResponse{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(responses)
	}
}

// RegenerateHandler replaces a stored answer with a fresh generation.
func (h *AIHandler) RegenerateHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedObjectID(w, r)
	if !ok {
		return
	}

	resp, err := h.Service.Regenerate(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		logrus.WithError(err).Warn("AI regeneration failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// DeleteResponseHandler removes a stored answer.
func (h *AIHandler) DeleteResponseHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedObjectID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
