package designs

import (
	"encoding/json"
	"errors"
	"net/http"

	"Motorsize/internal/auth"
	"Motorsize/internal/calc/motor"
	"Motorsize/internal/logging"
	"Motorsize/internal/repo"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	Repo   repo.Repository
	Logger *zap.Logger
}

// Save sizes the posted motor and stores input and result for the caller.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	log := logging.OrNop(h.Logger)
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input motor.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := motor.Calculate(input)
	if err != nil {
		http.Error(w, motor.ErrorMessage(err), motor.StatusFor(err))
		return
	}

	in, err := json.Marshal(res.Input)
	if err != nil {
		http.Error(w, "Encoding error", http.StatusInternalServerError)
		return
	}
	out, err := json.Marshal(res)
	if err != nil {
		http.Error(w, "Encoding error", http.StatusInternalServerError)
		return
	}
	d, err := h.Repo.SaveDesign(r.Context(), repo.Design{
		UserID:      userID,
		Name:        res.Name,
		Topology:    res.Topology.String(),
		TotalMassKG: res.TotalMassKG,
		Input:       in,
		Result:      out,
	})
	if err != nil {
		log.Error("save design", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	log.Debug("design saved", zap.Int("user_id", userID), zap.Stringer("id", d.ID))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/api/user/designs/"+d.ID.String())
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(d)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.Repo.ListDesigns(r.Context(), userID)
	if err != nil {
		logging.OrNop(h.Logger).Error("list designs", zap.Int("user_id", userID), zap.Error(err))
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid design id", http.StatusBadRequest)
		return
	}
	d, err := h.Repo.GetDesign(r.Context(), userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Design not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.OrNop(h.Logger).Error("get design", zap.Stringer("id", id), zap.Error(err))
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}
