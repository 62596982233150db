package listactivities

import (
	"context"
	"net/http"
	"time"

	apphttp "mergington-activities/internal/common/http"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/common/observability"
	"mergington-activities/pkg/registry"

	"go.opentelemetry.io/otel/attribute"
)

const (
	Operation = "list"
)

type Lister interface {
	List() registry.Catalog
}

type Handler struct {
	config *Config
	roster Lister
	obs    *observability.Observability
	logger logger.Logger
}

func NewHandler(config *Config, roster Lister, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		roster: roster,
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"operation": Operation}),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	output := h.Execute(r.Context())

	if err := apphttp.WriteJSON(w, http.StatusOK, output); err != nil {
		h.logger.Warn("failed to write response", map[string]interface{}{"error": err})
	}
}

// Execute never fails.
func (h *Handler) Execute(ctx context.Context) Output {
	start := time.Now()
	ctx, span := h.obs.StartSpan(ctx, "registry.list")
	defer span.End()

	output := h.roster.List()

	span.SetAttributes(attribute.Int("activities.count", len(output)))
	for name, a := range output {
		metrics.RosterSize.WithLabelValues(name).Set(float64(len(a.Participants)))
	}
	h.obs.RecordOperation(ctx, Operation, metrics.OutcomeSuccess, time.Since(start))

	h.logger.Debug("listed activities", map[string]interface{}{"count": len(output)})
	return output
}
