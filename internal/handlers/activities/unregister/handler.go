package unregister

import (
	"context"
	"net/http"
	"time"

	"mergington-activities/internal/audit"
	apperrors "mergington-activities/internal/common/errors"
	apphttp "mergington-activities/internal/common/http"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/common/observability"
	"mergington-activities/pkg/registry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	Operation = "unregister"
)

type Roster interface {
	Unregister(activity, email string) (string, error)
	Get(activity string) (registry.Activity, error)
}

type Handler struct {
	config   *Config
	roster   Roster
	recorder audit.Recorder
	obs      *observability.Observability
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, roster Roster, recorder audit.Recorder, obs *observability.Observability, log logger.Logger) *Handler {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	log = log.WithFields(map[string]interface{}{"operation": Operation})
	return &Handler{
		config:   config,
		roster:   roster,
		recorder: recorder,
		obs:      obs,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

// ServeHTTP handles DELETE /activities/{activity_name}/unregister?email=...
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	input := Input{
		Activity: r.PathValue("activity_name"),
		Email:    r.URL.Query().Get("email"),
	}
	if input.Email == "" {
		h.errors.HandleHTTPError(w, r, apperrors.NewInvalidInputError("email", "query parameter email is required"))
		return
	}

	output, err := h.Execute(r.Context(), &input)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}

	if err := apphttp.WriteJSON(w, http.StatusOK, output); err != nil {
		h.logger.Warn("failed to write response", map[string]interface{}{"error": err})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	ctx, span := h.obs.StartSpan(ctx, "registry.unregister",
		attribute.String("activity", input.Activity),
	)
	defer span.End()

	message, err := h.roster.Unregister(input.Activity, input.Email)
	if err != nil {
		code := string(apperrors.Normalize(err).Code)
		span.SetStatus(codes.Error, code)
		metrics.RosterOperationsTotal.WithLabelValues(Operation, code).Inc()
		h.obs.RecordOperation(ctx, Operation, code, time.Since(start))
		return nil, err
	}

	metrics.RosterOperationsTotal.WithLabelValues(Operation, metrics.OutcomeSuccess).Inc()
	h.obs.RecordOperation(ctx, Operation, metrics.OutcomeSuccess, time.Since(start))
	if a, err := h.roster.Get(input.Activity); err == nil {
		metrics.RosterSize.WithLabelValues(input.Activity).Set(float64(len(a.Participants)))
	}

	h.logger.Info("participant unregistered", map[string]interface{}{
		"activity": input.Activity,
		"email":    input.Email,
	})

	// non-critical: log and keep the successful response
	auditCtx, cancel := context.WithTimeout(ctx, h.config.AuditTimeout)
	defer cancel()
	event := audit.NewEvent(audit.EventUnregistered, input.Activity, input.Email)
	if err := h.recorder.Record(auditCtx, event); err != nil {
		metrics.SideEffectFailures.WithLabelValues("audit").Inc()
		h.logger.Warn("audit record failed", map[string]interface{}{
			"error":    err,
			"eventId":  event.ID,
			"activity": input.Activity,
		})
	}

	return &Output{Message: message}, nil
}
