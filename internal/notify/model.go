package notify

import (
	"time"

	"github.com/datasalt-svg/stormnotify/internal/classify"
	"github.com/datasalt-svg/stormnotify/internal/insurance"
)

// Status tracks where a notification run is in its lifecycle.
type Status string

const (
	// StatusPending means created, not yet started
	StatusPending Status = "pending"

	// StatusInProgress means currently being processed
	StatusInProgress Status = "in_progress"

	// StatusComplete means finished, possibly with per-record failures
	StatusComplete Status = "complete"

	// StatusFailed means the run itself could not proceed
	StatusFailed Status = "failed"
)

// SkipReason explains why a record produced no notification. Skips are
// informational outcomes, not errors.
type SkipReason string

const (
	// SkipNoActiveAlert means no alert was joined for the customer's zipcode,
	// or the joined alert carried no event text.
	SkipNoActiveAlert SkipReason = "no_active_alert"

	// SkipUnclassifiedAlert means the alert event matched no rule in the
	// classification table.
	SkipUnclassifiedAlert SkipReason = "unclassified_alert"

	// SkipPolicyNotRelevant means the alert classified to categories that do
	// not include the customer's policy type.
	SkipPolicyNotRelevant SkipReason = "policy_not_relevant"
)

// Disposition is the terminal state of a single input record within a run.
type Disposition string

const (
	// DispositionSkipped means the record did not match (see SkipReason)
	DispositionSkipped Disposition = "skipped"

	// DispositionNotified means a notification was generated for the match
	DispositionNotified Disposition = "notified"

	// DispositionFailed means the record matched but generation failed
	DispositionFailed Disposition = "failed"

	// DispositionCancelled means the run was abandoned before this record's
	// notification could be composed
	DispositionCancelled Disposition = "cancelled"
)

// Match is a customer whose policy type is relevant to an active alert.
// By construction the lowercased policy type is a member of Categories.
type Match struct {
	Customer   insurance.CustomerPolicy `json:"customer"`
	Alert      insurance.WeatherAlert   `json:"alert"`
	Categories classify.Set             `json:"-"`
}

// Outcome is the per-record result of a run. Seq is the input record index;
// every input record yields exactly one Outcome.
type Outcome struct {
	Seq          int                 `json:"seq"`
	Customer     string              `json:"customer"`
	PolicyType   string              `json:"policy_type"`
	Zipcode      string              `json:"zipcode"`
	Email        string              `json:"email,omitempty"`
	AlertEvent   string              `json:"alert_event,omitempty"`
	Disposition  Disposition         `json:"disposition"`
	SkipReason   SkipReason          `json:"skip_reason,omitempty"`
	Categories   []classify.Category `json:"matched_categories,omitempty"`
	Notification string              `json:"notification,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// BatchResult aggregates one Outcome per input record, in input order.
type BatchResult struct {
	Outcomes  []Outcome `json:"outcomes"`
	Matched   int       `json:"matched"`
	Notified  int       `json:"notified"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	Cancelled int       `json:"cancelled"`
}

// Result is the stored outcome of a notification run.
type Result struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	Records     int       `json:"records"`
	Matched     int       `json:"matched"`
	Notified    int       `json:"notified"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
	Cancelled   int       `json:"cancelled"`
	Outcomes    []Outcome `json:"outcomes,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
	Duration    float64   `json:"duration_seconds,omitempty"`
}
