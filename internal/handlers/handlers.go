package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"impostor/internal/catalog"
	"impostor/internal/game"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog   *catalog.Service
	store     game.Store
	publicURL string
}

// New creates a new handler
func New(catalogService *catalog.Service, store game.Store, publicURL string) *Handler {
	return &Handler{
		catalog:   catalogService,
		store:     store,
		publicURL: publicURL,
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Root confirms the API is up.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Impostor API up and running!"})
}

// LoadSubjects bulk-inserts subjects, skipping names already present.
func (h *Handler) LoadSubjects(w http.ResponseWriter, r *http.Request) {
	var subjects []game.Subject
	if err := json.NewDecoder(r.Body).Decode(&subjects); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid subject list"})
		return
	}

	inserted, err := h.catalog.LoadSubjects(r.Context(), subjects)
	if err != nil {
		log.Printf("❌ Failed to load subjects: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load subjects"})
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message":  "load complete",
		"inserted": inserted,
	})
}

// ListSubjects returns the whole subject pool.
func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.catalog.Subjects(r.Context())
	if err != nil {
		log.Printf("❌ Failed to list subjects: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list subjects"})
		return
	}
	respondJSON(w, http.StatusOK, subjects)
}

// RandomSubject returns one uniformly random subject.
func (h *Handler) RandomSubject(w http.ResponseWriter, r *http.Request) {
	subject, err := h.catalog.PickRandomSubject(r.Context())
	if errors.Is(err, catalog.ErrNoSubjects) {
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "no subjects loaded"})
		return
	}
	if err != nil {
		log.Printf("❌ Failed to pick subject: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to pick subject"})
		return
	}
	respondJSON(w, http.StatusOK, subject)
}

// GetSubject returns one subject by id.
func (h *Handler) GetSubject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	subject, err := h.catalog.Subject(r.Context(), id)
	if errors.Is(err, catalog.ErrSubjectNotFound) {
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "subject not found"})
		return
	}
	if err != nil {
		log.Printf("❌ Failed to get subject %s: %v", id, err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to get subject"})
		return
	}
	respondJSON(w, http.StatusOK, subject)
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HealthReady reports readiness of the backing stores.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Store not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
