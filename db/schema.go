// ABOUTME: Database schema definitions
// ABOUTME: Key-value snapshot table for the sqlite backend plus the SMS delivery log
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sms_log (
	id TEXT PRIMARY KEY,
	policy_id TEXT,
	recipient TEXT NOT NULL,
	message_type TEXT NOT NULL CHECK(message_type IN ('policy_added', 'birthday', 'renewal_reminder')),
	body TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('sent', 'failed', 'skipped')),
	provider_sid TEXT,
	error_message TEXT,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sms_log_created_at ON sms_log(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_sms_log_policy_id ON sms_log(policy_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
