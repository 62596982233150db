package signup

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
	"mergington-activities/internal/notify"
	"mergington-activities/pkg/registry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	Operation = "signup"
)

type Roster interface {
	Signup(activity, email string) (string, error)
	Get(activity string) (registry.Activity, error)
}

type HandlerOptions struct {
	Config        *Config
	Roster        Roster
	Recorder      audit.Recorder
	Notifier      notify.Notifier
	Observability *observability.Observability
	Logger        logger.Logger
}

type Handler struct {
	config   *Config
	roster   Roster
	recorder audit.Recorder
	notifier notify.Notifier
	obs      *observability.Observability
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	if opts.Config == nil {
		opts.Config = LoadConfig()
	}
	if opts.Recorder == nil {
		opts.Recorder = audit.Nop{}
	}
	log := opts.Logger.WithFields(map[string]interface{}{"operation": Operation})
	return &Handler{
		config:   opts.Config,
		roster:   opts.Roster,
		recorder: opts.Recorder,
		notifier: opts.Notifier,
		obs:      opts.Observability,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

// ServeHTTP handles POST /activities/{activity_name}/signup?email=...
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
	ctx, span := h.obs.StartSpan(ctx, "registry.signup",
		attribute.String("activity", input.Activity),
	)
	defer span.End()

	message, err := h.roster.Signup(input.Activity, input.Email)
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

	h.logger.Info("participant signed up", map[string]interface{}{
		"activity": input.Activity,
		"email":    input.Email,
	})

	h.afterSignup(ctx, input)

	return &Output{Message: message}, nil
}

// afterSignup runs the audit and confirmation side effects. The signup has
// already happened, so failures are logged and counted but never returned.
func (h *Handler) afterSignup(ctx context.Context, input *Input) {
	ctx, cancel := context.WithTimeout(ctx, h.config.SideEffectTimeout)
	defer cancel()

	event := audit.NewEvent(audit.EventSignedUp, input.Activity, input.Email)
	if err := h.recorder.Record(ctx, event); err != nil {
		metrics.SideEffectFailures.WithLabelValues("audit").Inc()
		h.logger.Warn("audit record failed", map[string]interface{}{
			"error":    err,
			"eventId":  event.ID,
			"activity": input.Activity,
		})
	}

	if h.notifier == nil {
		return
	}
	if err := h.notifier.SignupConfirmation(ctx, input.Activity, input.Email); err != nil {
		metrics.SideEffectFailures.WithLabelValues("notification").Inc()
		h.logger.Warn("signup confirmation failed", map[string]interface{}{
			"error":    err,
			"activity": input.Activity,
			"email":    input.Email,
		})
	}
}
