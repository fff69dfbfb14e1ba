// ABOUTME: Daily scan sending birthday wishes and renewal reminders
// ABOUTME: Reads the live collection each tick and never sends the same message twice in a day
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
)

// ReminderDays are the days-before-renewal on which a reminder goes out.
var ReminderDays = []int{7, 3, 1}

// PolicySource supplies the current collection. *store.Store implements it.
type PolicySource interface {
	Policies() []models.Policy
}

// ScanResult counts the messages attempted by one scan.
type ScanResult struct {
	Birthdays BatchResult `json:"birthdays"`
	Reminders BatchResult `json:"reminders"`
}

// Scheduler runs Scan immediately and then every Interval.
type Scheduler struct {
	source   PolicySource
	sms      *SMS
	interval time.Duration
	now      func() time.Time
	logger   *log.Logger

	mu     sync.Mutex
	day    string
	ledger map[string]bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval overrides the 24 hour scan interval.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSchedulerClock overrides time.Now.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// WithSchedulerLogger overrides the default logger.
func WithSchedulerLogger(l *log.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler returns a scheduler over source.
func NewScheduler(source PolicySource, sms *SMS, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		source:   source,
		sms:      sms,
		interval: 24 * time.Hour,
		now:      time.Now,
		logger:   log.Default(),
		ledger:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scans immediately and then on every tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Scan(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Scan(ctx)
		}
	}
}

// Scan sends today's birthday and renewal messages that were not already sent today.
// Only successful sends are remembered, so a later scan retries failures.
func (s *Scheduler) Scan(ctx context.Context) ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := dates.Format(now)
	if today != s.day {
		s.day = today
		s.ledger = make(map[string]bool)
	}

	var res ScanResult
	policies := s.source.Policies()

	for _, p := range policies {
		if ctx.Err() != nil {
			return res
		}
		dob, err := dates.Parse(p.DateOfBirth)
		if err != nil || !dates.SameMonthDay(dob, now) {
			continue
		}
		key := fmt.Sprintf("%s/%s", models.MessageBirthday, p.ID)
		if s.ledger[key] {
			continue
		}
		if s.sms.SendBirthday(ctx, p) {
			s.ledger[key] = true
			res.Birthdays.Success++
			s.logger.Info("birthday sms sent", "name", p.PolicyholderName)
		} else {
			res.Birthdays.Failed++
		}
	}

	for _, p := range policies {
		if ctx.Err() != nil {
			return res
		}
		renewal, err := dates.Parse(p.PolicyRenewalDate)
		if err != nil {
			continue
		}
		days := dates.DaysUntilRenewalAt(renewal, now)
		if !isReminderDay(days) {
			continue
		}
		key := fmt.Sprintf("%s/%s/%d", models.MessageRenewalReminder, p.ID, days)
		if s.ledger[key] {
			continue
		}
		if s.sms.SendRenewalReminder(ctx, p, days) {
			s.ledger[key] = true
			res.Reminders.Success++
			s.logger.Info("renewal reminder sms sent", "name", p.PolicyholderName, "days", days)
		} else {
			res.Reminders.Failed++
		}
	}

	return res
}

func isReminderDay(days int) bool {
	for _, d := range ReminderDays {
		if d == days {
			return true
		}
	}
	return false
}
