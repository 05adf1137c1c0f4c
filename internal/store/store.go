// Package store persists classified bounce and complaint notifications in
// PostgreSQL. It implements the notification sink interfaces. Deduplication
// of redelivered notifications is not its job; every emission becomes a row.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/ses-stats/internal/notification"
	"github.com/ignite/ses-stats/internal/pkg/logger"
)

// Store is a Postgres-backed record store for bounce/complaint events.
type Store struct {
	db *sql.DB
}

// New creates a Store on an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the notification tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ses_bounces (
			id UUID PRIMARY KEY,
			message_id TEXT NOT NULL DEFAULT '',
			feedback_id TEXT NOT NULL DEFAULT '',
			bounce_type TEXT NOT NULL DEFAULT '',
			bounce_sub_type TEXT NOT NULL DEFAULT '',
			recipients TEXT[] NOT NULL DEFAULT '{}',
			raw JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ses_bounces_feedback_id ON ses_bounces (feedback_id)`,
		`CREATE TABLE IF NOT EXISTS ses_complaints (
			id UUID PRIMARY KEY,
			message_id TEXT NOT NULL DEFAULT '',
			feedback_id TEXT NOT NULL DEFAULT '',
			feedback_type TEXT NOT NULL DEFAULT '',
			recipients TEXT[] NOT NULL DEFAULT '{}',
			raw JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ses_complaints_feedback_id ON ses_complaints (feedback_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating notification tables: %w", err)
		}
	}
	return nil
}

// BounceReceived records a bounce event.
func (s *Store) BounceReceived(ctx context.Context, ev notification.BounceEvent) error {
	raw, err := json.Marshal(map[string]interface{}{"mail": ev.Mail, "bounce": ev.Bounce})
	if err != nil {
		return fmt.Errorf("encoding bounce payload: %w", err)
	}

	recipients := recipientEmails(ev.Bounce, "bouncedRecipients")
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ses_bounces (id, message_id, feedback_id, bounce_type, bounce_sub_type, recipients, raw, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`, uuid.New(), messageID(ev.Mail), ev.FeedbackID, ev.BounceType, ev.BounceSubType, pq.Array(recipients), raw)
	if err != nil {
		return fmt.Errorf("recording bounce: %w", err)
	}

	for _, email := range recipients {
		logger.Info("recorded bounce", "recipient", email, "feedback_id", ev.FeedbackID)
	}
	return nil
}

// ComplaintReceived records a complaint event.
func (s *Store) ComplaintReceived(ctx context.Context, ev notification.ComplaintEvent) error {
	raw, err := json.Marshal(map[string]interface{}{"mail": ev.Mail, "complaint": ev.Complaint})
	if err != nil {
		return fmt.Errorf("encoding complaint payload: %w", err)
	}

	recipients := recipientEmails(ev.Complaint, "complainedRecipients")
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ses_complaints (id, message_id, feedback_id, feedback_type, recipients, raw, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, uuid.New(), messageID(ev.Mail), ev.FeedbackID, ev.FeedbackType, pq.Array(recipients), raw)
	if err != nil {
		return fmt.Errorf("recording complaint: %w", err)
	}

	for _, email := range recipients {
		logger.Info("recorded complaint", "recipient", email, "feedback_id", ev.FeedbackID)
	}
	return nil
}

// messageID pulls the SES message id out of the mail sub-object.
func messageID(mail map[string]interface{}) string {
	if v, ok := mail["messageId"].(string); ok {
		return v
	}
	return ""
}

// recipientEmails extracts emailAddress values from a recipient list like
// bouncedRecipients/complainedRecipients. Unparseable lists degrade to empty
// rather than failing the insert.
func recipientEmails(details map[string]interface{}, key string) []string {
	list, ok := details[key].([]interface{})
	if !ok {
		return []string{}
	}
	emails := make([]string, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if email, ok := entry["emailAddress"].(string); ok && email != "" {
			emails = append(emails, email)
		}
	}
	return emails
}
