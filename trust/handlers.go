package trust

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// FeedbackRecorder accepts delivery-outcome submissions. Implemented by the
// feedback store.
type FeedbackRecorder interface {
	Record(domain string, delivered bool, reference string) error
}

// Handler is the HTTP binding over the engine. The engine itself stays
// transport-agnostic; everything here is (de)serialization and status
// codes.
type Handler struct {
	engine   *Engine
	recorder FeedbackRecorder
}

func NewHandler(engine *Engine, recorder FeedbackRecorder) *Handler {
	return &Handler{engine: engine, recorder: recorder}
}

// Routes mounts the API on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/analyze", h.analyze)
	r.Post("/feedback", h.feedback)
	r.Get("/compare", h.compare)
	r.Get("/history", h.historyFor)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

type analyzeRequest struct {
	URL string `json:"url"`
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	result, err := h.engine.Analyze(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type feedbackRequest struct {
	URL       string `json:"url"`
	Delivered bool   `json:"delivered"`
	Reference string `json:"reference,omitempty"`
}

func (h *Handler) feedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	target, err := NormalizeTarget(req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.recorder.Record(target.Domain, req.Delivered, req.Reference); err != nil {
		log.Printf("[http] feedback write failed for %s: %v", target.Domain, err)
		http.Error(w, "could not record feedback", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "feedback recorded for " + target.Domain,
	})
}

func (h *Handler) compare(w http.ResponseWriter, r *http.Request) {
	cmp, err := h.engine.Compare(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (h *Handler) historyFor(w http.ResponseWriter, r *http.Request) {
	target, err := NormalizeTarget(r.URL.Query().Get("url"))
	if err != nil {
		writeError(w, err)
		return
	}
	points := h.engine.History(target.Domain)
	if len(points) == 0 {
		http.Error(w, "no scans for this URL yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"domain":   target.Domain,
		"timeline": points,
	})
}

func writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		http.Error(w, verr.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
