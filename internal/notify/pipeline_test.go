package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/datasalt-svg/stormnotify/internal/classify"
	"github.com/datasalt-svg/stormnotify/internal/insurance"
)

// selectiveGenerator fails for prompts mentioning customers in failFor and
// tracks peak concurrency.
type selectiveGenerator struct {
	mu      sync.Mutex
	failFor map[string]bool
	delay   time.Duration

	inFlight int32
	peak     int32
	calls    int32
}

func (g *selectiveGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	cur := atomic.AddInt32(&g.inFlight, 1)
	defer atomic.AddInt32(&g.inFlight, -1)
	atomic.AddInt32(&g.calls, 1)
	for {
		p := atomic.LoadInt32(&g.peak)
		if cur <= p || atomic.CompareAndSwapInt32(&g.peak, p, cur) {
			break
		}
	}

	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.delay):
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for name := range g.failFor {
		if strings.Contains(prompt, name) {
			return "", errors.New("model overloaded")
		}
	}
	return "generated notification", nil
}

func record(name, policyType, event string) insurance.JoinedRecord {
	rec := insurance.JoinedRecord{
		Customer: insurance.CustomerPolicy{
			Name:       name,
			PolicyType: policyType,
			Zipcode:    "73301",
			Email:      strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		},
	}
	if event != "" {
		rec.Alert = &insurance.WeatherAlert{
			Event:   event,
			Start:   1718000000,
			End:     1718010000,
			Zipcode: "73301",
		}
	}
	return rec
}

func newTestPipeline(gen Generator, workers int) *Pipeline {
	matcher := NewMatcher(classify.Default())
	composer := NewComposer(gen, nil)
	return NewPipeline(matcher, composer, workers, nil, nil)
}

func TestRun_OneOutcomePerRecord(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&selectiveGenerator{}, 2)

	records := []insurance.JoinedRecord{
		record("Alice", "Auto Insurance", "Tornado Warning"), // match
		record("Bob", "life", "Flash Flood Watch"),           // policy_not_relevant
		record("Carol", "home", ""),                          // no_active_alert
		record("Dave", "home", "Unusual Sunny Day"),          // unclassified_alert
		record("Erin", "property", "Wildfire Warning"),       // match
	}

	br := p.Run(context.Background(), records)

	if len(br.Outcomes) != len(records) {
		t.Fatalf("outcomes = %d, want %d", len(br.Outcomes), len(records))
	}
	if br.Matched != 2 || br.Notified != 2 || br.Skipped != 3 || br.Failed != 0 || br.Cancelled != 0 {
		t.Errorf("counts = matched %d notified %d skipped %d failed %d cancelled %d",
			br.Matched, br.Notified, br.Skipped, br.Failed, br.Cancelled)
	}

	// outcomes are input-ordered and correlated by seq
	for i, o := range br.Outcomes {
		if o.Seq != i {
			t.Errorf("outcome %d has seq %d", i, o.Seq)
		}
	}

	wantSkips := map[int]SkipReason{
		1: SkipPolicyNotRelevant,
		2: SkipNoActiveAlert,
		3: SkipUnclassifiedAlert,
	}
	for i, want := range wantSkips {
		if br.Outcomes[i].Disposition != DispositionSkipped {
			t.Errorf("outcome %d disposition = %q, want skipped", i, br.Outcomes[i].Disposition)
		}
		if br.Outcomes[i].SkipReason != want {
			t.Errorf("outcome %d skip reason = %q, want %q", i, br.Outcomes[i].SkipReason, want)
		}
	}

	for _, i := range []int{0, 4} {
		if br.Outcomes[i].Disposition != DispositionNotified {
			t.Errorf("outcome %d disposition = %q, want notified", i, br.Outcomes[i].Disposition)
		}
		if br.Outcomes[i].Notification == "" {
			t.Errorf("outcome %d missing notification body", i)
		}
		if len(br.Outcomes[i].Categories) == 0 {
			t.Errorf("outcome %d missing matched categories", i)
		}
	}
}

func TestRun_GenerationFailureDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	gen := &selectiveGenerator{failFor: map[string]bool{"Alice": true}}
	p := newTestPipeline(gen, 1)

	records := []insurance.JoinedRecord{
		record("Alice", "home", "Hurricane Warning"),
		record("Bob", "home", "Hurricane Warning"),
	}

	br := p.Run(context.Background(), records)

	if len(br.Outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(br.Outcomes))
	}
	if br.Outcomes[0].Disposition != DispositionFailed {
		t.Errorf("outcome 0 disposition = %q, want failed", br.Outcomes[0].Disposition)
	}
	if br.Outcomes[0].Error == "" {
		t.Error("outcome 0 missing failure reason")
	}
	if br.Outcomes[1].Disposition != DispositionNotified {
		t.Errorf("outcome 1 disposition = %q, want notified", br.Outcomes[1].Disposition)
	}
	if br.Failed != 1 || br.Notified != 1 {
		t.Errorf("counts = failed %d notified %d, want 1/1", br.Failed, br.Notified)
	}
}

func TestRun_EmptyBatch(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&selectiveGenerator{}, 2)

	br := p.Run(context.Background(), nil)
	if len(br.Outcomes) != 0 {
		t.Errorf("outcomes = %d, want 0", len(br.Outcomes))
	}
	if br.Matched != 0 {
		t.Errorf("matched = %d, want 0", br.Matched)
	}
}

func TestRun_WorkerPoolBound(t *testing.T) {
	t.Parallel()

	gen := &selectiveGenerator{delay: 20 * time.Millisecond}
	p := newTestPipeline(gen, 2)

	records := make([]insurance.JoinedRecord, 8)
	for i := range records {
		records[i] = record("Customer", "home", "Hurricane Warning")
	}

	br := p.Run(context.Background(), records)

	if br.Notified != 8 {
		t.Fatalf("notified = %d, want 8", br.Notified)
	}
	if peak := atomic.LoadInt32(&gen.peak); peak > 2 {
		t.Errorf("peak concurrent generations = %d, want <= 2", peak)
	}
}

func TestRun_CancellationMarksRemaining(t *testing.T) {
	t.Parallel()

	gen := &selectiveGenerator{delay: 50 * time.Millisecond}
	p := newTestPipeline(gen, 1)

	records := make([]insurance.JoinedRecord, 6)
	for i := range records {
		records[i] = record("Customer", "home", "Hurricane Warning")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 75*time.Millisecond)
	defer cancel()

	br := p.Run(ctx, records)

	if len(br.Outcomes) != 6 {
		t.Fatalf("outcomes = %d, want 6", len(br.Outcomes))
	}
	if br.Cancelled == 0 {
		t.Error("expected some cancelled outcomes")
	}
	if br.Notified+br.Failed+br.Cancelled != 6 {
		t.Errorf("dispositions do not cover the batch: notified %d failed %d cancelled %d",
			br.Notified, br.Failed, br.Cancelled)
	}
	// completed work survives cancellation
	if br.Notified == 0 {
		t.Error("expected at least one completed notification before cancellation")
	}
}

// Two simultaneous alerts for one customer are processed independently.
func TestRun_NoDedupAcrossAlerts(t *testing.T) {
	t.Parallel()

	gen := &selectiveGenerator{}
	p := newTestPipeline(gen, 2)

	rec1 := record("Alice", "home", "Hurricane Warning")
	rec2 := record("Alice", "home", "Heat Advisory")

	br := p.Run(context.Background(), []insurance.JoinedRecord{rec1, rec2})

	if br.Notified != 2 {
		t.Fatalf("notified = %d, want 2 (no dedup across alerts)", br.Notified)
	}
	if calls := atomic.LoadInt32(&gen.calls); calls != 2 {
		t.Errorf("generator calls = %d, want 2", calls)
	}
}

// Skips never reach the generator.
func TestRun_NoComposeCallForSkips(t *testing.T) {
	t.Parallel()

	gen := &selectiveGenerator{}
	p := newTestPipeline(gen, 2)

	records := []insurance.JoinedRecord{
		record("Alice", "home", ""),
		record("Bob", "life", "Tornado Warning"),
	}

	br := p.Run(context.Background(), records)

	if br.Skipped != 2 {
		t.Fatalf("skipped = %d, want 2", br.Skipped)
	}
	if calls := atomic.LoadInt32(&gen.calls); calls != 0 {
		t.Errorf("generator calls = %d, want 0", calls)
	}
}
