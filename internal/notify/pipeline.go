package notify

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/datasalt-svg/stormnotify/internal/insurance"
	"github.com/linnemanlabs/go-core/log"
)

// DefaultComposeWorkers bounds concurrent generation calls when no explicit
// worker count is configured. Generation calls are independent across
// matches; the bound exists to respect external-service rate limits.
const DefaultComposeWorkers = 4

// Pipeline applies the Matcher and Composer to a batch of joined records.
// It produces exactly one Outcome per input record and never aborts the batch
// because one record failed.
type Pipeline struct {
	matcher  *Matcher
	composer *Composer
	workers  int
	logger   log.Logger
	metrics  *Metrics
}

// NewPipeline creates a Pipeline. workers bounds the compose worker pool;
// values below 1 fall back to DefaultComposeWorkers.
func NewPipeline(matcher *Matcher, composer *Composer, workers int, logger log.Logger, metrics *Metrics) *Pipeline {
	if workers < 1 {
		workers = DefaultComposeWorkers
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Pipeline{
		matcher:  matcher,
		composer: composer,
		workers:  workers,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run processes the batch. Matching is evaluated sequentially (it is pure and
// cheap); composition for the resulting matches is dispatched to a bounded
// worker pool. Outcomes are correlated by input record index, so the returned
// batch is input-ordered regardless of completion order. On context
// cancellation, in-flight and unstarted compositions are marked cancelled and
// already-completed outcomes are returned as-is.
func (p *Pipeline) Run(ctx context.Context, records []insurance.JoinedRecord) *BatchResult {
	outcomes := make([]Outcome, len(records))

	type job struct {
		seq   int
		match *Match
	}
	var jobs []job

	for i, rec := range records {
		out := Outcome{
			Seq:        i,
			Customer:   rec.Customer.Name,
			PolicyType: rec.Customer.PolicyType,
			Zipcode:    rec.Customer.Zipcode,
			Email:      rec.Customer.Email,
		}
		if rec.Alert != nil {
			out.AlertEvent = rec.Alert.Event
		}

		match, reason := p.matcher.Match(rec)
		if match == nil {
			out.Disposition = DispositionSkipped
			out.SkipReason = reason
			outcomes[i] = out
			p.metrics.observeSkip(reason)
			continue
		}

		out.Categories = match.Categories.List()
		outcomes[i] = out
		jobs = append(jobs, job{seq: i, match: match})
	}

	// Each worker writes only its own outcome index, so no locking is needed
	// on the outcomes slice.
	var g errgroup.Group
	g.SetLimit(p.workers)

	for _, j := range jobs {
		g.Go(func() error {
			if ctx.Err() != nil {
				outcomes[j.seq].Disposition = DispositionCancelled
				return nil
			}

			start := time.Now()
			body, err := p.composer.Compose(ctx, j.match)
			p.metrics.observeGeneration(err == nil, time.Since(start))

			switch {
			case err != nil && ctx.Err() != nil:
				outcomes[j.seq].Disposition = DispositionCancelled
			case err != nil:
				outcomes[j.seq].Disposition = DispositionFailed
				outcomes[j.seq].Error = err.Error()
			default:
				outcomes[j.seq].Disposition = DispositionNotified
				outcomes[j.seq].Notification = body
			}
			return nil
		})
	}
	_ = g.Wait()

	br := &BatchResult{Outcomes: outcomes, Matched: len(jobs)}
	for _, o := range outcomes {
		switch o.Disposition {
		case DispositionSkipped:
			br.Skipped++
		case DispositionNotified:
			br.Notified++
		case DispositionFailed:
			br.Failed++
		case DispositionCancelled:
			br.Cancelled++
		}
		p.metrics.observeOutcome(o.Disposition)
	}

	p.logger.Info(ctx, "batch processed",
		"records", len(records),
		"matched", br.Matched,
		"notified", br.Notified,
		"failed", br.Failed,
		"skipped", br.Skipped,
		"cancelled", br.Cancelled,
	)

	return br
}
