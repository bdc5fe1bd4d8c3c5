// Package runapi exposes notification runs over HTTP: trigger a run, fetch
// its result.
package runapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/datasalt-svg/stormnotify/internal/notify"
)

// RunService defines the business operations runapi needs.
type RunService interface {
	Trigger(ctx context.Context) (*notify.TriggerResult, error)
	Get(ctx context.Context, id string) (*notify.Result, bool, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    RunService
}

// New creates a new API handler.
func New(logger log.Logger, svc RunService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("run service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", a.handleTriggerRun)
		r.Get("/runs/{id}", a.handleGetRun)
	})
}

func (a *API) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	tr, err := a.svc.Trigger(r.Context())
	if err != nil {
		if errors.Is(err, notify.ErrDataSourceUnavailable) {
			a.logger.Error(r.Context(), err, "run precondition failed")
			http.Error(w, `{"error":"data source unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		a.logger.Error(r.Context(), err, "failed to trigger run")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("stormnotify.run.id", tr.ID),
		attribute.Int("stormnotify.run.records", tr.Records),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(tr)
}

func (a *API) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("stormnotify.run.id", id))

	result, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get run result", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	span.SetAttributes(attribute.String("stormnotify.run.status", string(result.Status)))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
