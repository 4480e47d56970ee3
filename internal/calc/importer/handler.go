package importer

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sort"

	"Motorsize/internal/calc/motor"
	"Motorsize/internal/logging"
	"Motorsize/internal/metrics"

	"go.uber.org/zap"
)

const maxUpload = 10 << 20

type Handler struct {
	Logger *zap.Logger
}

type ImportResult struct {
	Count   int            `json:"count"`
	Results []motor.Result `json:"results"`
	Errors  []RowError     `json:"errors"`
}

// Import sizes every row of the uploaded workbook. Rows that fail to parse
// or size are reported in Errors. With ?format=xlsx the results are
// returned as a workbook instead of JSON.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	log := logging.OrNop(h.Logger)

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	records, rowErrs, err := ReadInputs(file)
	if err != nil {
		log.Info("workbook rejected", zap.Error(err))
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}

	out := Calculate(records)
	out.Errors = append(out.Errors, rowErrs...)
	sort.Slice(out.Errors, func(i, j int) bool { return out.Errors[i].Row < out.Errors[j].Row })
	metrics.BatchSize.Observe(float64(len(records)))
	log.Debug("workbook imported", zap.Int("rows", len(records)), zap.Int("errors", len(out.Errors)))

	if r.URL.Query().Get("format") == "xlsx" {
		var buf bytes.Buffer
		if err := WriteResults(&buf, out.Results); err != nil {
			log.Error("write workbook", zap.Error(err))
			http.Error(w, "Export error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename=\"motors.xlsx\"")
		w.Write(buf.Bytes())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// Calculate sizes each record; failures become row errors.
func Calculate(records []Record) ImportResult {
	out := ImportResult{Results: []motor.Result{}, Errors: []RowError{}}
	for _, rec := range records {
		res, err := motor.Calculate(rec.Input)
		if err != nil {
			out.Errors = append(out.Errors, RowError{Row: rec.Row, Message: err.Error()})
			continue
		}
		out.Results = append(out.Results, res)
	}
	out.Count = len(out.Results)
	return out
}
