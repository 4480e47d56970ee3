package batch

import (
	"encoding/json"
	"net/http"

	"Motorsize/internal/calc/motor"
	"Motorsize/internal/logging"

	"go.uber.org/zap"
)

type Handler struct {
	Workers int
	Logger  *zap.Logger
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input BatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if len(input.Items) == 0 {
		http.Error(w, "No items", http.StatusBadRequest)
		return
	}
	res, err := Calculate(r.Context(), input, h.Workers)
	if err != nil {
		logging.OrNop(h.Logger).Info("batch rejected", zap.Int("items", len(input.Items)), zap.Error(err))
		http.Error(w, motor.ErrorMessage(err), motor.StatusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
