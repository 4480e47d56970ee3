package report

import (
	"bytes"
	"encoding/json"
	"net/http"

	"Motorsize/internal/calc/motor"
	"Motorsize/internal/logging"

	"go.uber.org/zap"
)

type Input struct {
	Meta
	Motor motor.Input `json:"motor"`
}

type Handler struct {
	Logger *zap.Logger
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logging.OrNop(h.Logger)

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := motor.Calculate(input.Motor)
	if err != nil {
		http.Error(w, motor.ErrorMessage(err), motor.StatusFor(err))
		return
	}

	var buf bytes.Buffer
	if err := Render(&buf, input.Meta, res); err != nil {
		log.Error("render report", zap.String("name", res.Name), zap.Error(err))
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	w.Write(buf.Bytes())
}
