package notify

import (
	"strings"

	"github.com/datasalt-svg/stormnotify/internal/classify"
	"github.com/datasalt-svg/stormnotify/internal/insurance"
)

// Matcher decides whether a joined record's alert is relevant to the
// customer's policy. Matching is pure: no I/O, no shared state.
type Matcher struct {
	table *classify.Table
}

// NewMatcher creates a Matcher over the given classification table.
func NewMatcher(table *classify.Table) *Matcher {
	return &Matcher{table: table}
}

// Match evaluates a single record. It returns a Match when the customer's
// policy type is a member of the alert's classified categories, otherwise a
// SkipReason. A customer appearing in multiple records (multiple simultaneous
// alerts for their zipcode) is evaluated independently per record.
func (m *Matcher) Match(rec insurance.JoinedRecord) (*Match, SkipReason) {
	if rec.Alert == nil || strings.TrimSpace(rec.Alert.Event) == "" {
		return nil, SkipNoActiveAlert
	}

	categories := m.table.Classify(rec.Alert.Event)
	if len(categories) == 0 {
		return nil, SkipUnclassifiedAlert
	}

	// literal label equality on the lowercased policy type, never fuzzy
	policy := classify.Category(strings.ToLower(rec.Customer.PolicyType))
	if !categories.Has(policy) {
		return nil, SkipPolicyNotRelevant
	}

	return &Match{
		Customer:   rec.Customer,
		Alert:      *rec.Alert,
		Categories: categories,
	}, ""
}
