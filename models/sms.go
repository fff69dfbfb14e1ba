// ABOUTME: SMS message and delivery log models
// ABOUTME: Shared by the notifier, the SQLite log and the CLI history view
package models

import "time"

// MessageType selects an SMS template.
type MessageType string

const (
	MessagePolicyAdded     MessageType = "policy_added"
	MessageBirthday        MessageType = "birthday"
	MessageRenewalReminder MessageType = "renewal_reminder"
)

// SMSStatus is the outcome of one send attempt.
type SMSStatus string

const (
	SMSSent    SMSStatus = "sent"
	SMSFailed  SMSStatus = "failed"
	SMSSkipped SMSStatus = "skipped"
)

// SMSLogEntry records one send attempt.
type SMSLogEntry struct {
	ID          string      `json:"id"`
	PolicyID    string      `json:"policyId,omitempty"`
	To          string      `json:"to"`
	Type        MessageType `json:"type"`
	Body        string      `json:"body"`
	Status      SMSStatus   `json:"status"`
	ProviderSID string      `json:"providerSid,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}
