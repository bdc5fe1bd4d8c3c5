package notify

import "context"

// Store is the persistence interface for run results.
type Store interface {
	Get(ctx context.Context, id string) (*Result, bool, error)
	Put(ctx context.Context, result *Result) error
}
