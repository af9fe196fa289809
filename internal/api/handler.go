package api

import (
	"encoding/json"
	"net/http"

	"utitriage/app"
	"utitriage/domain/patient"
	"utitriage/internal"
	"utitriage/internal/intake"
)

// maxBodyBytes caps a prediction request body
const maxBodyBytes = 64 << 10

// Handler serves the JSON prediction API
type Handler struct {
	predictor *app.Predictor
	logger    *internal.Logger
}

// NewHandler creates a handler around a loaded predictor
func NewHandler(predictor *app.Predictor, logger *internal.Logger) *Handler {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &Handler{predictor: predictor, logger: logger.With("API")}
}

// Feature describes one model input
type Feature struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Label string `json:"label"`
	Basic bool   `json:"basic"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("writing %T response: %v", v, err)
	}
}

// Predict scores one patient record given as a JSON object
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request body must be a JSON object"})
		return
	}

	outcome, err := h.predictor.PredictRaw(r.Context(), raw)
	switch {
	case err != nil:
		h.logger.Error("prediction failed: %v", err)
		h.writeJSON(w, http.StatusInternalServerError, outcome)
	case !outcome.OK():
		h.writeJSON(w, http.StatusUnprocessableEntity, outcome)
	default:
		h.writeJSON(w, http.StatusOK, outcome)
	}
}

// Features lists the model inputs in order
func (h *Handler) Features(w http.ResponseWriter, r *http.Request) {
	basic := map[string]bool{}
	for _, q := range intake.Questions(intake.ModeBasic) {
		basic[q.Key] = true
	}
	features := make([]Feature, 0, patient.FeatureCount)
	for i, name := range patient.FeatureOrder {
		features = append(features, Feature{Index: i, Name: name, Label: patient.Label(name), Basic: basic[name]})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"contract": patient.ContractVersion,
		"features": features,
	})
}

// Artifacts describes the loaded bundle
func (h *Handler) Artifacts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.predictor.Describe())
}

// Health reports readiness; the handler only exists once artifacts loaded
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"artifacts": h.predictor.Describe().Version,
	})
}
