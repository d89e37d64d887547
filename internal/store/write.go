package store

import (
	"context"
	"fmt"
)

// WriteEvent appends a processed event.
// Uses ON CONFLICT(seq) DO NOTHING for idempotency.
func (s *Store) WriteEvent(ctx context.Context, ev EventRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events
		(seq, flow_token, type, source, value, dataset, record_count, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`,
		ev.Seq,
		ev.Flow,
		ev.Type,
		ev.Source,
		ev.Value,
		ev.Dataset,
		ev.RecordCount,
		ev.Error,
	)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// WriteNotification appends a delivered selection notification.
// Uses ON CONFLICT(seq) DO NOTHING for idempotency.
func (s *Store) WriteNotification(ctx context.Context, n NotificationRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications
		(seq, flow_token, origin, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`,
		n.Seq,
		n.Flow,
		n.Origin,
		n.Value,
	)
	if err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}

// WriteDataset stores a record set snapshot under its identity.
// Writing an identity that already exists is a no-op.
func (s *Store) WriteDataset(ctx context.Context, d DatasetRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO datasets
		(identity, source, snapshot)
		VALUES (?, ?, ?)
		ON CONFLICT(identity) DO NOTHING
	`,
		d.Identity,
		d.Source,
		string(d.Snapshot),
	)
	if err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}
