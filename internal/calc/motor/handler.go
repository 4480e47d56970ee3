package motor

import (
	"encoding/json"
	"errors"
	"net/http"

	"Motorsize/internal/calc/geometry"
	"Motorsize/internal/calc/sizing"
	"Motorsize/internal/logging"

	"go.uber.org/zap"
)

type Handler struct {
	Logger *zap.Logger
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	log := logging.OrNop(h.Logger)

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(input)
	if err != nil {
		log.Info("motor calculation rejected", zap.String("topology", input.Topology.String()), zap.Error(err))
		http.Error(w, ErrorMessage(err), StatusFor(err))
		return
	}
	log.Debug("motor sized",
		zap.String("name", res.Name),
		zap.String("topology", res.Topology.String()),
		zap.Float64("total_mass_kg", res.TotalMassKG),
		zap.Bool("ok", res.OK))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// StatusFor maps calculation errors to HTTP status codes: bad requirements
// and unbuildable geometry are the caller's problem.
func StatusFor(err error) int {
	if errors.Is(err, sizing.ErrInvalidConfiguration) || errors.Is(err, geometry.ErrInvalidGeometry) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func ErrorMessage(err error) string {
	if StatusFor(err) == http.StatusBadRequest {
		return "Calculation error: " + err.Error()
	}
	return "Calculation error"
}
