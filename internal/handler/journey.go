package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/probuddy/api/internal/ctxkeys"
	"github.com/probuddy/api/internal/repository"
	"github.com/probuddy/api/internal/service"
)

type JourneyHandler struct {
	journeyService  *service.JourneyService
	generateTimeout time.Duration
}

func NewJourneyHandler(journeyService *service.JourneyService, generateTimeout time.Duration) *JourneyHandler {
	return &JourneyHandler{
		journeyService:  journeyService,
		generateTimeout: generateTimeout,
	}
}

func (h *JourneyHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in service.GenerateInput
	if !decode(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.generateTimeout)
	defer cancel()

	j, message, err := h.journeyService.Generate(ctx, user, in)
	if err != nil {
		fail(w, r, err, "failed to generate journey", "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"journey": j,
		"message": message,
	})
}

// Current returns the most recently updated journey, or every journey of the
// user with ?all=true.
func (h *JourneyHandler) Current(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	if r.URL.Query().Get("all") == "true" {
		journeys, err := h.journeyService.Journeys(user.ID)
		if err != nil {
			fail(w, r, err, "failed to list journeys", "user_id", user.ID)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"journeys": journeys})
		return
	}

	j, err := h.journeyService.Current(user.ID)
	if err != nil {
		fail(w, r, err, "failed to get current journey", "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"journey": j})
}

func (h *JourneyHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	journeyID := r.PathValue("id")

	j, err := h.journeyService.ByID(user.ID, journeyID)
	if err != nil {
		fail(w, r, err, "failed to get journey", "user_id", user.ID, "journey_id", journeyID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"journey": j})
}

func (h *JourneyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	journeyID := r.PathValue("id")

	err := h.journeyService.Delete(r.Context(), user.ID, journeyID)
	if err != nil {
		fail(w, r, err, "failed to delete journey", "user_id", user.ID, "journey_id", journeyID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *JourneyHandler) ETA(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	journeyID := r.PathValue("id")

	report, err := h.journeyService.ETA(user.ID, journeyID)
	if err != nil {
		fail(w, r, err, "failed to calculate eta", "user_id", user.ID, "journey_id", journeyID)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *JourneyHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	journeyID := r.PathValue("id")

	res, err := h.journeyService.Recalculate(r.Context(), user, journeyID)
	if err != nil {
		fail(w, r, err, "failed to recalculate journey", "user_id", user.ID, "journey_id", journeyID)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type adjustRequest struct {
	JourneyID         string `json:"journey_id"`
	CurrentActivity   string `json:"current_activity"`
	AdditionalContext string `json:"additional_context"`
}

// Adjust applies suggested changes to the given journey, defaulting to the
// current one.
func (h *JourneyHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req adjustRequest
	if !decode(w, r, &req) {
		return
	}

	if req.JourneyID == "" {
		current, err := h.journeyService.Current(user.ID)
		if err != nil {
			fail(w, r, err, "failed to get current journey", "user_id", user.ID)
			return
		}
		if current == nil {
			fail(w, r, repository.ErrJourneyNotFound, "no journey to adjust")
			return
		}
		req.JourneyID = current.ID
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.generateTimeout)
	defer cancel()

	res, err := h.journeyService.Adjust(ctx, user, req.JourneyID, req.CurrentActivity, req.AdditionalContext)
	if err != nil {
		fail(w, r, err, "failed to adjust journey", "user_id", user.ID, "journey_id", req.JourneyID)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *JourneyHandler) UpdateStepStatus(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	stepID := r.PathValue("id")

	var u service.StatusUpdate
	if !decode(w, r, &u) {
		return
	}

	res, err := h.journeyService.UpdateStepStatus(r.Context(), user, stepID, u)
	if err != nil {
		fail(w, r, err, "failed to update step", "user_id", user.ID, "step_id", stepID)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *JourneyHandler) RenameStep(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	stepID := r.PathValue("id")

	var req struct {
		Title string `json:"title"`
	}
	if !decode(w, r, &req) {
		return
	}

	res, err := h.journeyService.RenameStep(r.Context(), user, stepID, req.Title)
	if err != nil {
		fail(w, r, err, "failed to rename step", "user_id", user.ID, "step_id", stepID)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *JourneyHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	stepID := r.PathValue("id")

	var req struct {
		Note string `json:"note"`
	}
	if !decode(w, r, &req) {
		return
	}

	res, err := h.journeyService.AddNote(r.Context(), user, stepID, req.Note)
	if err != nil {
		fail(w, r, err, "failed to add note", "user_id", user.ID, "step_id", stepID)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *JourneyHandler) ChoosePath(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	stepID := r.PathValue("id")

	var req struct {
		ChosenStepID string `json:"chosen_step_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	res, err := h.journeyService.ChoosePath(r.Context(), user, stepID, req.ChosenStepID)
	if err != nil {
		fail(w, r, err, "failed to choose path", "user_id", user.ID, "step_id", stepID)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
