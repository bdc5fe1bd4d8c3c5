package notify

import (
	"context"
	"errors"

	"github.com/datasalt-svg/stormnotify/internal/insurance"
)

// ErrDataSourceUnavailable marks connection or query failures against the
// customer/alert data source. It is fatal to a run: no partial results are
// attempted and no run record is created.
var ErrDataSourceUnavailable = errors.New("data source unavailable")

// Source provides the joined customer/alert records a run processes. The
// concrete implementation (PostgreSQL) owns the join mechanics; the pipeline
// treats this as an injected capability.
type Source interface {
	FetchJoinedRecords(ctx context.Context) ([]insurance.JoinedRecord, error)
}
