package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"

	"github.com/datasalt-svg/stormnotify/internal/insurance"
	"github.com/linnemanlabs/go-core/log"
)

// TriggerResult is the outcome of starting a notification run.
type TriggerResult struct {
	ID      string `json:"id"`
	Records int    `json:"records"`
}

// Service is the business boundary for notification runs. It owns run
// lifecycle, record fetching, and async dispatch of the pipeline.
type Service struct {
	store    Store
	source   Source
	pipeline *Pipeline
	logger   log.Logger
	metrics  *Metrics
	clock    clockwork.Clock
}

// NewService creates a notification run service. A nil clock falls back to
// the real clock; tests inject a fake one.
func NewService(store Store, source Source, pipeline *Pipeline, logger log.Logger, metrics *Metrics, clock clockwork.Clock) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		store:    store,
		source:   source,
		pipeline: pipeline,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
	}
}

// Trigger fetches the joined records and starts an asynchronous run over
// them. Fetch failure is a precondition failure: it is returned immediately
// as ErrDataSourceUnavailable and no run is created.
func (s *Service) Trigger(ctx context.Context) (*TriggerResult, error) {
	records, err := s.source.FetchJoinedRecords(ctx)
	if err != nil {
		if !errors.Is(err, ErrDataSourceUnavailable) {
			err = fmt.Errorf("%w: %v", ErrDataSourceUnavailable, err)
		}
		return nil, err
	}

	id := ulid.Make().String()
	result := &Result{
		ID:        id,
		Status:    StatusPending,
		Records:   len(records),
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.Put(ctx, result); err != nil {
		return nil, err
	}

	// kick off the run detached from the caller's cancellation; pass only the
	// ID to avoid sharing the Result pointer.
	go s.runBatch(context.WithoutCancel(ctx), id, records)

	return &TriggerResult{ID: id, Records: len(records)}, nil
}

// Get retrieves a run result by ID.
func (s *Service) Get(ctx context.Context, id string) (*Result, bool, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) runBatch(ctx context.Context, id string, records []insurance.JoinedRecord) {
	L := s.logger.With("run_id", id)

	result, ok, err := s.store.Get(ctx, id)
	if err != nil || !ok {
		L.Error(ctx, err, "failed to fetch result for run")
		return
	}

	result.Status = StatusInProgress
	if err := s.store.Put(ctx, result); err != nil {
		L.Error(ctx, err, "failed to update status to in_progress")
		return
	}

	start := s.clock.Now()
	br := s.pipeline.Run(ctx, records)

	result.Status = StatusComplete
	result.Matched = br.Matched
	result.Notified = br.Notified
	result.Failed = br.Failed
	result.Skipped = br.Skipped
	result.Cancelled = br.Cancelled
	result.Outcomes = br.Outcomes
	result.CompletedAt = s.clock.Now()
	result.Duration = result.CompletedAt.Sub(start).Seconds()

	if err := s.store.Put(ctx, result); err != nil {
		L.Error(ctx, err, "failed to persist run result")
		return
	}

	s.metrics.observeRun(result.Status, result.CompletedAt.Sub(start), len(records))

	L.Info(ctx, "run complete",
		"status", result.Status,
		"duration", result.Duration,
		"records", len(records),
		"matched", br.Matched,
		"notified", br.Notified,
		"failed", br.Failed,
	)
}
