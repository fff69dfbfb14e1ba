// ABOUTME: SMS dispatch through a pluggable provider, gated by the stored SMS config
// ABOUTME: Delivery failures are logged and recorded, never returned to the caller
package notify

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"

	"github.com/harperreed/insuretrack/models"
)

// Message is one outgoing SMS.
type Message struct {
	To       string
	Body     string
	Type     models.MessageType
	PolicyID string
}

// Provider delivers a message and returns the provider's message id.
type Provider interface {
	Send(ctx context.Context, cfg models.SMSConfig, msg Message) (string, error)
}

// ConfigSource supplies the current SMS settings. *storage.Adapter implements it.
type ConfigSource interface {
	LoadSMSConfig() models.SMSConfig
}

// Logbook records send attempts. *db.SMSLog implements it.
type Logbook interface {
	Record(ctx context.Context, entry models.SMSLogEntry) error
}

// NotificationDeliveryError wraps a provider failure for one recipient.
type NotificationDeliveryError struct {
	To   string
	Type models.MessageType
	Err  error
}

func (e *NotificationDeliveryError) Error() string {
	return fmt.Sprintf("deliver %s sms to %s: %v", e.Type, e.To, e.Err)
}

func (e *NotificationDeliveryError) Unwrap() error { return e.Err }

// BatchResult counts the outcome of SendBatch.
type BatchResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// SMS sends templated messages.
type SMS struct {
	config   ConfigSource
	provider Provider
	logbook  Logbook
	logger   *log.Logger
	now      func() time.Time
	onResult func(models.MessageType, models.SMSStatus)

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// SMSOption configures an SMS sender.
type SMSOption func(*SMS)

// WithSMSLogger overrides the default logger.
func WithSMSLogger(l *log.Logger) SMSOption {
	return func(s *SMS) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLogbook records every attempt to lb.
func WithLogbook(lb Logbook) SMSOption {
	return func(s *SMS) { s.logbook = lb }
}

// WithSMSClock overrides time.Now.
func WithSMSClock(now func() time.Time) SMSOption {
	return func(s *SMS) { s.now = now }
}

// WithResultHook is called after every attempt, e.g. to count sends.
func WithResultHook(fn func(models.MessageType, models.SMSStatus)) SMSOption {
	return func(s *SMS) { s.onResult = fn }
}

// NewSMS returns a sender reading its settings from config on every send.
func NewSMS(config ConfigSource, provider Provider, opts ...SMSOption) *SMS {
	s := &SMS{
		config:   config,
		provider: provider,
		logger:   log.Default(),
		now:      time.Now,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SMS) newID(t time.Time) string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// Send delivers msg. It returns false when SMS is disabled or unconfigured, or delivery fails.
func (s *SMS) Send(ctx context.Context, msg Message) bool {
	now := s.now()
	entry := models.SMSLogEntry{
		ID:        s.newID(now),
		PolicyID:  msg.PolicyID,
		To:        msg.To,
		Type:      msg.Type,
		Body:      msg.Body,
		CreatedAt: now,
	}

	cfg := s.config.LoadSMSConfig()
	switch {
	case !cfg.Enabled || !cfg.Configured():
		s.logger.Info("SMS service not configured or disabled", "type", msg.Type)
		entry.Status = models.SMSSkipped
		entry.Error = "sms service not configured or disabled"
	default:
		sid, err := s.provider.Send(ctx, cfg, msg)
		if err != nil {
			derr := &NotificationDeliveryError{To: msg.To, Type: msg.Type, Err: err}
			s.logger.Error("sms delivery failed", "err", derr)
			entry.Status = models.SMSFailed
			entry.Error = err.Error()
		} else {
			entry.Status = models.SMSSent
			entry.ProviderSID = sid
		}
	}

	s.record(ctx, entry)
	return entry.Status == models.SMSSent
}

func (s *SMS) record(ctx context.Context, entry models.SMSLogEntry) {
	if s.onResult != nil {
		s.onResult(entry.Type, entry.Status)
	}
	if s.logbook == nil {
		return
	}
	// the send already happened, keep the log write alive past a cancelled ctx
	if err := s.logbook.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("failed to record sms", "id", entry.ID, "err", err)
	}
}

// SendBatch sends messages one after another and counts the outcomes.
func (s *SMS) SendBatch(ctx context.Context, msgs []Message) BatchResult {
	var res BatchResult
	for _, m := range msgs {
		if s.Send(ctx, m) {
			res.Success++
		} else {
			res.Failed++
		}
	}
	return res
}

// Enabled reports whether sends would currently be attempted.
func (s *SMS) Enabled() bool {
	cfg := s.config.LoadSMSConfig()
	return cfg.Enabled && cfg.Configured()
}

func (s *SMS) sendTemplate(ctx context.Context, msgType models.MessageType, p models.Policy, daysLeft int) bool {
	return s.Send(ctx, Message{
		To:       FormatPhoneNumber(p.MobileNumber),
		Body:     Render(msgType, p, daysLeft),
		Type:     msgType,
		PolicyID: p.ID,
	})
}

// SendPolicyAdded sends the welcome message for a new policy.
func (s *SMS) SendPolicyAdded(ctx context.Context, p models.Policy) bool {
	return s.sendTemplate(ctx, models.MessagePolicyAdded, p, 0)
}

// SendBirthday sends birthday wishes to the policyholder.
func (s *SMS) SendBirthday(ctx context.Context, p models.Policy) bool {
	return s.sendTemplate(ctx, models.MessageBirthday, p, 0)
}

// SendRenewalReminder warns that p renews in daysLeft days.
func (s *SMS) SendRenewalReminder(ctx context.Context, p models.Policy, daysLeft int) bool {
	return s.sendTemplate(ctx, models.MessageRenewalReminder, p, daysLeft)
}

// TestMessage is the body of the configuration check message.
const TestMessage = "🧪 Test message from InsureTrack SMS service. If you received this, your SMS configuration is working correctly!"

// SendTest sends TestMessage to number after formatting it.
func (s *SMS) SendTest(ctx context.Context, number string) bool {
	return s.Send(ctx, Message{
		To:   FormatPhoneNumber(number),
		Body: TestMessage,
		Type: models.MessagePolicyAdded,
	})
}
