package lca

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"Motorsize/internal/calc/bom"
)

type Handler struct{}

// Calc evaluates a posted BOM without sizing a motor.
func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input bom.BOM
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := Validate(input); err != nil {
		http.Error(w, "Calculation error: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Evaluate(input))
}

// Validate rejects negative category masses.
func Validate(b bom.BOM) error {
	for _, c := range bom.Categories() {
		if v := b.Get(c); v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%s mass must be a non-negative number", c)
		}
	}
	return nil
}
