package handler

import (
	"net/http"

	"github.com/probuddy/api/internal/ctxkeys"
	"github.com/probuddy/api/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.Goals(user.ID)
	if err != nil {
		fail(w, r, err, "failed to get goals", "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	goal, err := h.goalService.ByID(user.ID, goalID)
	if err != nil {
		fail(w, r, err, "failed to get goal", "user_id", user.ID, "goal_id", goalID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"goal": goal})
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in service.GoalInput
	if !decode(w, r, &in) {
		return
	}

	goal, err := h.goalService.Create(user.ID, in)
	if err != nil {
		fail(w, r, err, "failed to create goal", "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"goal": goal})
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	var in service.GoalInput
	if !decode(w, r, &in) {
		return
	}

	goal, err := h.goalService.Update(user.ID, goalID, in)
	if err != nil {
		fail(w, r, err, "failed to update goal", "user_id", user.ID, "goal_id", goalID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"goal": goal})
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	err := h.goalService.Delete(user.ID, goalID)
	if err != nil {
		fail(w, r, err, "failed to delete goal", "user_id", user.ID, "goal_id", goalID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
