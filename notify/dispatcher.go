// ABOUTME: Background worker pool sending welcome SMS for newly added policies
// ABOUTME: Subscribes to the policy store so adds never wait on delivery
package notify

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/harperreed/insuretrack/models"
)

// DefaultQueueSize bounds the pending welcome messages.
const DefaultQueueSize = 64

// Dispatcher queues welcome messages and sends them from a fixed set of workers.
type Dispatcher struct {
	sms    *SMS
	logger *log.Logger

	jobs   chan models.Policy
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts workers goroutines sending through sms.
func NewDispatcher(sms *SMS, workers int, logger *log.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	d := &Dispatcher{
		sms:    sms,
		logger: logger,
		jobs:   make(chan models.Policy, DefaultQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for p := range d.jobs {
		if !d.sms.SendPolicyAdded(d.ctx, p) {
			d.logger.Debug("welcome sms not sent", "policy", p.PolicyNumber)
		}
	}
}

// PolicyAdded queues the welcome message. A full queue drops the message with a warning.
func (d *Dispatcher) PolicyAdded(p models.Policy) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("dispatcher closed, dropping welcome sms", "policy", p.PolicyNumber)
		return
	}

	select {
	case d.jobs <- p:
	default:
		d.logger.Warn("sms queue full, dropping welcome sms", "policy", p.PolicyNumber)
	}
}

// Close stops accepting work and waits for queued messages, or until ctx ends,
// at which point in-flight sends are cancelled.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
