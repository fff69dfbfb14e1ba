// ABOUTME: Stub SMS provider that logs messages instead of calling a gateway
// ABOUTME: Simulates delivery latency and returns ULID message SIDs
package notify

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"

	"github.com/harperreed/insuretrack/models"
)

// StubProvider pretends to deliver: it logs the message and succeeds after Delay.
// No network call is made.
type StubProvider struct {
	Delay  time.Duration
	Logger *log.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewStubProvider returns a stub with the given simulated latency.
func NewStubProvider(delay time.Duration, logger *log.Logger) *StubProvider {
	if logger == nil {
		logger = log.Default()
	}
	return &StubProvider{
		Delay:   delay,
		Logger:  logger,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// Send waits for Delay or ctx, whichever comes first.
func (p *StubProvider) Send(ctx context.Context, cfg models.SMSConfig, msg Message) (string, error) {
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Info("Sending SMS", "from", cfg.FromNumber, "to", msg.To, "type", msg.Type, "message", msg.Body)

	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entropy == nil {
		p.entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	}
	return "SM" + ulid.MustNew(ulid.Now(), p.entropy).String(), nil
}
