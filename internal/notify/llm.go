package notify

import (
	"context"
	"errors"
)

// ErrGenerationUnavailable marks transport or model failures from the
// generative text service. It is recovered per-match: the failing record is
// recorded as failed and the run continues.
var ErrGenerationUnavailable = errors.New("generation unavailable")

// Generator is the interface for any generative text backend. Implementations
// must be safe to call concurrently; the pipeline invokes Generate from a
// bounded worker pool.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
