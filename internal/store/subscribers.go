// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"

	"github.com/pdiddy/neurotrack/pkg/types"
)

// AddSubscriber creates a subscriber or reactivates an existing one. The
// name is updated either way.
func (s *Store) AddSubscriber(ctx context.Context, email, name string) error {
	if email == "" {
		return fmt.Errorf("subscriber email is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscribers (email, name) VALUES (?, ?)
		ON CONFLICT(email) DO UPDATE SET name = excluded.name, active = 1`,
		email, name,
	)
	if err != nil {
		return fmt.Errorf("adding subscriber: %w", err)
	}
	return nil
}

// RemoveSubscriber clears the active flag. The row is kept so a later
// resubscribe restores the original creation date.
func (s *Store) RemoveSubscriber(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE subscribers SET active = 0 WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("removing subscriber: %w", err)
	}
	return nil
}

// ActiveSubscribers returns active subscribers in subscription order.
func (s *Store) ActiveSubscribers(ctx context.Context) ([]types.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, name, active, created_at
		FROM subscribers WHERE active = 1 ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying subscribers: %w", err)
	}
	defer rows.Close()

	var subs []types.Subscriber
	for rows.Next() {
		var sub types.Subscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Name, &sub.Active, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
