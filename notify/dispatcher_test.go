package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/insuretrack/models"
)

func TestDispatcherSendsWelcome(t *testing.T) {
	provider := &mockProvider{}
	provider.On("Send", mock.Anything, mock.Anything, mock.MatchedBy(func(m Message) bool {
		return m.Type == models.MessagePolicyAdded && m.PolicyID == "p1"
	})).Return("SM1", nil).Once()

	book := &memLogbook{}
	sms := NewSMS(&staticConfig{cfg: enabledConfig}, provider, WithLogbook(book), WithSMSLogger(quietLogger()))
	d := NewDispatcher(sms, 2, quietLogger())

	d.PolicyAdded(ashaPolicy())
	require.NoError(t, d.Close(context.Background()))

	provider.AssertExpectations(t)
	assert.Len(t, book.all(), 1)
}

func TestDispatcherFailureDoesNotPropagate(t *testing.T) {
	sms := NewSMS(&staticConfig{}, &mockProvider{}, WithSMSLogger(quietLogger()))
	d := NewDispatcher(sms, 1, quietLogger())

	assert.NotPanics(t, func() { d.PolicyAdded(ashaPolicy()) })
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcherDropsAfterClose(t *testing.T) {
	provider := &mockProvider{}
	sms := NewSMS(&staticConfig{cfg: enabledConfig}, provider, WithSMSLogger(quietLogger()))
	d := NewDispatcher(sms, 1, quietLogger())
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()), "close is idempotent")

	d.PolicyAdded(ashaPolicy())
	provider.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcherCloseTimeoutCancelsSends(t *testing.T) {
	sms := NewSMS(&staticConfig{cfg: enabledConfig}, NewStubProvider(time.Hour, quietLogger()), WithSMSLogger(quietLogger()))
	d := NewDispatcher(sms, 1, quietLogger())
	d.PolicyAdded(ashaPolicy())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
}
