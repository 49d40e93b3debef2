package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/adapters/senders"
	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

// Shared testify mocks for the app package tests.

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Save(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) FindByID(ctx context.Context, messageID uuid.UUID) (*domain.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) FindByDeliveryID(ctx context.Context, deliveryID uuid.UUID) (*domain.Message, error) {
	args := m.Called(ctx, deliveryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) FindAllByStatus(ctx context.Context, status domain.MessageStatus) ([]domain.Message, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageRepository) Delete(ctx context.Context, deliveryID uuid.UUID) error {
	args := m.Called(ctx, deliveryID)
	return args.Error(0)
}

func (m *MockMessageRepository) Resolve(ctx context.Context, deliveryID uuid.UUID, entry *domain.History) error {
	args := m.Called(ctx, deliveryID, entry)
	return args.Error(0)
}

type MockWhitelistRepository struct {
	mock.Mock
}

func (m *MockWhitelistRepository) IsAllowed(ctx context.Context, channel domain.ChannelType, recipient string) (bool, error) {
	args := m.Called(ctx, channel, recipient)
	return args.Bool(0), args.Error(1)
}

type MockPreferenceResolver struct {
	mock.Mock
}

func (m *MockPreferenceResolver) PreferencesFor(ctx context.Context, partyID string) ([]domain.FeedbackPreference, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeedbackPreference), args.Error(1)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, req senders.EmailSendRequest) (*senders.SendResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*senders.SendResult), args.Error(1)
}

type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) Send(ctx context.Context, req senders.SMSSendRequest) (*senders.SendResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*senders.SendResult), args.Error(1)
}

type MockDigitalMailSender struct {
	mock.Mock
}

func (m *MockDigitalMailSender) Send(ctx context.Context, req senders.DigitalMailSendRequest) (*senders.SendResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*senders.SendResult), args.Error(1)
}

type MockSnailMailSender struct {
	mock.Mock
}

func (m *MockSnailMailSender) Send(ctx context.Context, req senders.SnailMailSendRequest) (*senders.SendResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*senders.SendResult), args.Error(1)
}

// fastRetryPolicy returns a policy whose backoff sleeps are skipped, so
// exhaustion tests run instantly.
func fastRetryPolicy(maxAttempts int) *RetryPolicy {
	p := NewRetryPolicy(RetryConfig{
		MaxAttempts:  maxAttempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
	})
	p.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return p
}
