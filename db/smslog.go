// ABOUTME: Database operations for the SMS delivery log
// ABOUTME: Every send attempt is appended with a ULID id so entries sort by time
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/insuretrack/models"
)

// SMSLog appends and lists send attempts.
type SMSLog struct {
	db *sql.DB
}

// NewSMSLog wraps an open database whose schema is initialized.
func NewSMSLog(db *sql.DB) *SMSLog {
	return &SMSLog{db: db}
}

// Record appends entry. The caller assigns ID.
func (l *SMSLog) Record(ctx context.Context, entry models.SMSLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO sms_log (
			id, policy_id, recipient, message_type, body,
			status, provider_sid, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		nullString(entry.PolicyID),
		entry.To,
		string(entry.Type),
		entry.Body,
		string(entry.Status),
		nullString(entry.ProviderSID),
		nullString(entry.Error),
		entry.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record sms: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *SMSLog) Recent(ctx context.Context, limit int) ([]models.SMSLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, policy_id, recipient, message_type, body,
		       status, provider_sid, error_message, created_at
		FROM sms_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.SMSLogEntry
	for rows.Next() {
		var (
			e                       models.SMSLogEntry
			policyID, sid, errorMsg sql.NullString
			msgType, status         string
		)
		if err := rows.Scan(&e.ID, &policyID, &e.To, &msgType, &e.Body, &status, &sid, &errorMsg, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.PolicyID = policyID.String
		e.ProviderSID = sid.String
		e.Error = errorMsg.String
		e.Type = models.MessageType(msgType)
		e.Status = models.SMSStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByStatus tallies every logged attempt by status.
func (l *SMSLog) CountByStatus(ctx context.Context) (map[models.SMSStatus]int, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM sms_log GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.SMSStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.SMSStatus(status)] = n
	}
	return counts, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
