package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned by single-row reads that match nothing.
var ErrNotFound = errors.New("not found")

const eventColumns = `seq, flow_token, type, source, value, dataset, record_count, error`

// ReadFlow returns the events and notifications of one flow, ordered by seq.
//
// Returns empty slices (not nil) if no records exist for the flow token.
func (s *Store) ReadFlow(ctx context.Context, flowToken string) ([]EventRecord, []NotificationRecord, error) {
	events, err := s.queryEvents(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE flow_token = ?
		ORDER BY seq ASC
	`, flowToken)
	if err != nil {
		return nil, nil, err
	}

	notifications, err := s.queryNotifications(ctx, `
		SELECT seq, flow_token, origin, value
		FROM notifications
		WHERE flow_token = ?
		ORDER BY seq ASC
	`, flowToken)
	if err != nil {
		return nil, nil, err
	}

	return events, notifications, nil
}

// ReadEvents returns every event, ordered by seq.
func (s *Store) ReadEvents(ctx context.Context) ([]EventRecord, error) {
	return s.queryEvents(ctx, `
		SELECT `+eventColumns+`
		FROM events
		ORDER BY seq ASC
	`)
}

// ReadNotifications returns every notification, ordered by seq.
func (s *Store) ReadNotifications(ctx context.Context) ([]NotificationRecord, error) {
	return s.queryNotifications(ctx, `
		SELECT seq, flow_token, origin, value
		FROM notifications
		ORDER BY seq ASC
	`)
}

// ReadDataset returns the record set stored under identity.
// Returns ErrNotFound if there is none.
func (s *Store) ReadDataset(ctx context.Context, identity string) (DatasetRecord, error) {
	var d DatasetRecord
	var snapshot string
	err := s.db.QueryRowContext(ctx, `
		SELECT identity, source, snapshot
		FROM datasets
		WHERE identity = ?
	`, identity).Scan(&d.Identity, &d.Source, &snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return DatasetRecord{}, fmt.Errorf("dataset %s: %w", identity, ErrNotFound)
	}
	if err != nil {
		return DatasetRecord{}, fmt.Errorf("read dataset: %w", err)
	}
	d.Snapshot = []byte(snapshot)
	return d, nil
}

// Flows lists every flow that has at least one event, ordered by the
// flow's first seq.
func (s *Store) Flows(ctx context.Context) ([]FlowSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.flow_token,
		       MIN(e.seq),
		       MAX(MAX(e.seq), COALESCE((SELECT MAX(n.seq) FROM notifications n WHERE n.flow_token = e.flow_token), 0)),
		       COUNT(*),
		       (SELECT COUNT(*) FROM notifications n WHERE n.flow_token = e.flow_token)
		FROM events e
		GROUP BY e.flow_token
		ORDER BY MIN(e.seq) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query flows: %w", err)
	}
	defer rows.Close()

	flows := []FlowSummary{}
	for rows.Next() {
		var f FlowSummary
		if err := rows.Scan(&f.Flow, &f.FirstSeq, &f.LastSeq, &f.Events, &f.Notifications); err != nil {
			return nil, fmt.Errorf("scan flow: %w", err)
		}
		flows = append(flows, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flows: %w", err)
	}
	return flows, nil
}

// LastSeq returns the highest seq in the log, or 0 for an empty log.
// Used to resume the logical clock.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM events), 0),
			COALESCE((SELECT MAX(seq) FROM notifications), 0)
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("read last seq: %w", err)
	}
	return seq, nil
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []EventRecord{}
	for rows.Next() {
		var ev EventRecord
		if err := rows.Scan(&ev.Seq, &ev.Flow, &ev.Type, &ev.Source, &ev.Value, &ev.Dataset, &ev.RecordCount, &ev.Error); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (s *Store) queryNotifications(ctx context.Context, query string, args ...any) ([]NotificationRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []NotificationRecord{}
	for rows.Next() {
		var n NotificationRecord
		if err := rows.Scan(&n.Seq, &n.Flow, &n.Origin, &n.Value); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return notifications, nil
}
