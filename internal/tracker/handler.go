package tracker

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/liftprogress/internal/telemetry/tracing"
	"github.com/2beens/liftprogress/pkg"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleBootstrap(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.bootstrap")
	defer span.End()

	setup, err := handler.service.Bootstrap(ctx)
	if err != nil {
		log.Errorf("bootstrap failed: %s", err)
		http.Error(w, "error, failed to bootstrap board", http.StatusInternalServerError)
		return
	}

	writeJSON(w, setup)
}

func (handler *Handler) HandleListExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.listExercises")
	defer span.End()

	exercises, err := handler.service.ListExercises(ctx)
	if err != nil {
		log.Errorf("failed to list exercises: %s", err)
		http.Error(w, "error, failed to list exercises", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"exercises": exercises})
}

func (handler *Handler) HandleCreateExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.createExercise")
	defer span.End()

	var params struct {
		ExerciseName string `json:"exerciseName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		log.Tracef("create exercise, unmarshal json params: %s", err)
		http.Error(w, "create exercise failed", http.StatusBadRequest)
		return
	}

	card, err := handler.service.GetOrCreateExercise(ctx, params.ExerciseName)
	if err != nil {
		if errors.Is(err, ErrEmptyExerciseName) {
			http.Error(w, "error, exercise name empty", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to create exercise [%s]: %s", params.ExerciseName, err)
		http.Error(w, "error, failed to create exercise", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]any{"card": card})
}

func (handler *Handler) HandleRecordWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.recordWorkout")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req WorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("record workout, unmarshal json params: %s", err)
		http.Error(w, "record workout failed", http.StatusBadRequest)
		return
	}

	result, err := handler.service.RecordWorkout(ctx, req)
	if err != nil {
		if errors.Is(err, ErrEmptyExerciseName) || errors.Is(err, ErrInvalidWorkout) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to record workout [%s]: %s", req.ExerciseName, err)
		http.Error(w, "error, failed to record workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout recorded: [%s] record: %t, delta: %.2f", req.ExerciseName, result.IsRecord, result.DeltaLoad)
	writeJSON(w, result)
}

func (handler *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tracker.dashboard")
	defer span.End()

	snapshot, err := handler.service.Dashboard(ctx)
	if err != nil {
		log.Errorf("failed to get dashboard: %s", err)
		http.Error(w, "error, failed to get dashboard", http.StatusInternalServerError)
		return
	}

	writeJSON(w, snapshot)
}

func writeJSON(w http.ResponseWriter, payload any) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("failed to marshal response: %s", err)
		http.Error(w, "error, failed to marshal response", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseBytes(w, payloadBytes)
}
