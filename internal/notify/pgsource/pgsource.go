// Package pgsource provides the PostgreSQL implementation of notify.Source.
// It owns the customer/alert join: one row per (customer, active alert) pair,
// with alert columns NULL when no alert is active for the customer's zipcode.
package pgsource

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datasalt-svg/stormnotify/internal/insurance"
	"github.com/datasalt-svg/stormnotify/internal/notify"
)

var tracer = otel.Tracer("github.com/datasalt-svg/stormnotify/internal/notify/pgsource")

// Source fetches joined customer/alert records from PostgreSQL.
type Source struct {
	pool *pgxpool.Pool
}

// New creates a Source over an established pool.
func New(pool *pgxpool.Pool) *Source {
	return &Source{pool: pool}
}

const joinQuery = `SELECT p.party_name, p.policy_type, p.zipcode, p.email,
	w.zipcode, w.alert_event, w.description, w.sender_name, w.alert_start, w.alert_end
FROM party p
LEFT JOIN weather_alerts w ON p.zipcode = w.zipcode`

// FetchJoinedRecords returns every customer paired with zero-or-one active
// alert per joined row. A customer under multiple simultaneous alerts appears
// once per alert. Any connection or query failure is reported as
// notify.ErrDataSourceUnavailable.
func (s *Source) FetchJoinedRecords(ctx context.Context) ([]insurance.JoinedRecord, error) {
	ctx, span := tracer.Start(ctx, "pgsource.FetchJoinedRecords", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	rows, err := s.pool.Query(ctx, joinQuery)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: query joined records: %v", notify.ErrDataSourceUnavailable, err)
	}
	defer rows.Close()

	var records []insurance.JoinedRecord
	for rows.Next() {
		var (
			name, policyType, zipcode, email string
			wzip, event, description, sender *string
			alertStart, alertEnd             *int64
		)
		if err := rows.Scan(&name, &policyType, &zipcode, &email,
			&wzip, &event, &description, &sender, &alertStart, &alertEnd); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("%w: scan joined record: %v", notify.ErrDataSourceUnavailable, err)
		}
		records = append(records, joinedRecord(name, policyType, zipcode, email,
			wzip, event, description, sender, alertStart, alertEnd))
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: read joined records: %v", notify.ErrDataSourceUnavailable, err)
	}

	span.SetAttributes(attribute.Int("stormnotify.records", len(records)))
	return records, nil
}

// joinedRecord maps one scanned row to a JoinedRecord. The alert is present
// only when the LEFT JOIN matched a weather_alerts row (wzip non-NULL);
// a customer without an active alert gets a nil Alert, never a blank struct.
func joinedRecord(name, policyType, zipcode, email string,
	wzip, event, description, sender *string, alertStart, alertEnd *int64,
) insurance.JoinedRecord {
	rec := insurance.JoinedRecord{
		Customer: insurance.CustomerPolicy{
			Name:       name,
			PolicyType: policyType,
			Zipcode:    zipcode,
			Email:      email,
		},
	}
	if wzip == nil {
		return rec
	}

	alert := &insurance.WeatherAlert{Zipcode: *wzip}
	if event != nil {
		alert.Event = *event
	}
	if description != nil {
		alert.Description = *description
	}
	if sender != nil {
		alert.SenderName = *sender
	}
	if alertStart != nil {
		alert.Start = *alertStart
	}
	if alertEnd != nil {
		alert.End = *alertEnd
	}
	rec.Alert = alert
	return rec
}
