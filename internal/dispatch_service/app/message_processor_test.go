package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
	"github.com/opencomms/messaging-dispatch/internal/platform/messagebroker"
)

func newCompositeMessage(t *testing.T, partyID string) *domain.Message {
	t.Helper()
	content, err := json.Marshal(domain.MessageRequest{
		PartyID: partyID,
		Subject: "Case update",
		Message: "Your case has been updated.",
		Sender:  "caseworker@example.com",
	})
	require.NoError(t, err)
	msg := domain.NewMessage(domain.ChannelMessage, content)
	msg.PartyID = &partyID
	return msg
}

func collectSignals(t *testing.T, bus *messagebroker.MemoryBroker, channel domain.ChannelType) *[]DispatchSignal {
	t.Helper()
	signals := &[]DispatchSignal{}
	_, err := bus.Subscribe(context.Background(), DispatchSubject(channel), "", func(m messagebroker.Message) {
		var sig DispatchSignal
		require.NoError(t, json.Unmarshal(m.Data(), &sig))
		*signals = append(*signals, sig)
	})
	require.NoError(t, err)
	return signals
}

func TestMessageProcessor_ResolvesToSMS(t *testing.T) {
	repo := new(MockMessageRepository)
	resolver := new(MockPreferenceResolver)
	bus := messagebroker.NewMemoryBroker()
	msg := newCompositeMessage(t, "199001011234")
	smsSignals := collectSignals(t, bus, domain.ChannelSMS)

	repo.On("FindByDeliveryID", mock.Anything, msg.DeliveryID).Return(msg, nil)
	resolver.On("PreferencesFor", mock.Anything, "199001011234").Return([]domain.FeedbackPreference{
		{ContactMethod: domain.ContactMethodSMS, Wanted: true, Destination: "+46701234567"},
	}, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		if m.ChannelType != domain.ChannelSMS || m.OriginalChannelType != domain.ChannelMessage {
			return false
		}
		var req domain.SMSRequest
		if err := json.Unmarshal(m.Content, &req); err != nil {
			return false
		}
		return req.MobileNumber == "+46701234567" && req.Message == "Your case has been updated."
	})).Return(msg, nil).Once()

	p := NewMessageProcessor(repo, resolver, bus, discardLogger())
	err := p.Dispatch(context.Background(), msg.DeliveryID)

	assert.NoError(t, err)
	require.Len(t, *smsSignals, 1)
	assert.Equal(t, msg.DeliveryID, (*smsSignals)[0].DeliveryID)
	// The concrete processor owns the terminal record; nothing is resolved here.
	repo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestMessageProcessor_PrefersFirstUsablePreference(t *testing.T) {
	repo := new(MockMessageRepository)
	resolver := new(MockPreferenceResolver)
	bus := messagebroker.NewMemoryBroker()
	msg := newCompositeMessage(t, "199001011234")
	emailSignals := collectSignals(t, bus, domain.ChannelEmail)

	// An unwanted SMS preference is skipped in favor of the wanted email one.
	resolver.On("PreferencesFor", mock.Anything, "199001011234").Return([]domain.FeedbackPreference{
		{ContactMethod: domain.ContactMethodSMS, Wanted: false, Destination: "+46701234567"},
		{ContactMethod: domain.ContactMethodEmail, Wanted: true, Destination: "someone@example.com"},
	}, nil)
	repo.On("FindByDeliveryID", mock.Anything, msg.DeliveryID).Return(msg, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		var req domain.EmailRequest
		if err := json.Unmarshal(m.Content, &req); err != nil {
			return false
		}
		return m.ChannelType == domain.ChannelEmail && req.EmailAddress == "someone@example.com"
	})).Return(msg, nil).Once()

	p := NewMessageProcessor(repo, resolver, bus, discardLogger())
	err := p.Dispatch(context.Background(), msg.DeliveryID)

	assert.NoError(t, err)
	assert.Len(t, *emailSignals, 1)
	repo.AssertExpectations(t)
}

func TestMessageProcessor_NoSettingsFound(t *testing.T) {
	repo := new(MockMessageRepository)
	resolver := new(MockPreferenceResolver)
	bus := messagebroker.NewMemoryBroker()
	msg := newCompositeMessage(t, "199001011234")

	repo.On("FindByDeliveryID", mock.Anything, msg.DeliveryID).Return(msg, nil)
	resolver.On("PreferencesFor", mock.Anything, "199001011234").Return(nil, nil)
	repo.On("Resolve", mock.Anything, msg.DeliveryID, mock.MatchedBy(func(h *domain.History) bool {
		return h.ChannelType == domain.ChannelMessage && h.Status == domain.StatusNoContactSettings
	})).Return(nil).Once()

	p := NewMessageProcessor(repo, resolver, bus, discardLogger())
	err := p.Dispatch(context.Background(), msg.DeliveryID)

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestMessageProcessor_NoContactWanted(t *testing.T) {
	repo := new(MockMessageRepository)
	resolver := new(MockPreferenceResolver)
	bus := messagebroker.NewMemoryBroker()
	msg := newCompositeMessage(t, "199001011234")

	repo.On("FindByDeliveryID", mock.Anything, msg.DeliveryID).Return(msg, nil)
	resolver.On("PreferencesFor", mock.Anything, "199001011234").Return([]domain.FeedbackPreference{
		{ContactMethod: domain.ContactMethodEmail, Wanted: false, Destination: "someone@example.com"},
	}, nil)
	repo.On("Resolve", mock.Anything, msg.DeliveryID, mock.MatchedBy(func(h *domain.History) bool {
		return h.ChannelType == domain.ChannelMessage && h.Status == domain.StatusNoContactWanted
	})).Return(nil).Once()

	p := NewMessageProcessor(repo, resolver, bus, discardLogger())
	err := p.Dispatch(context.Background(), msg.DeliveryID)

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}
