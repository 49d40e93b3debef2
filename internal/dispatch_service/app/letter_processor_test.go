package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/adapters/senders"
	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

func newLetterMessage(t *testing.T, attachments []domain.MailAttachment) *domain.Message {
	t.Helper()
	content, err := json.Marshal(domain.LetterRequest{
		PartyID: "199001011234",
		Subject: "Decision notice",
		Body:    "Your application has been processed.",
		Address: &domain.PostalAddress{
			Street:  "Storgatan 1",
			ZipCode: "12345",
			City:    "Stockholm",
		},
		Attachments: attachments,
	})
	require.NoError(t, err)
	return domain.NewMessage(domain.ChannelLetter, content)
}

func TestLetterProcessor_DigitalLegSucceeds(t *testing.T) {
	repo := new(MockMessageRepository)
	digital := new(MockDigitalMailSender)
	snail := new(MockSnailMailSender)
	msg := newLetterMessage(t, []domain.MailAttachment{
		{FileName: "notice.pdf", DeliveryMode: domain.DeliveryModeEither},
	})

	repo.On("FindByDeliveryID", mock.Anything, msg.DeliveryID).Return(msg, nil)
	digital.On("Send", mock.Anything, mock.Anything).Return(&senders.SendResult{Sent: true}, nil).Once()
	repo.On("Resolve", mock.Anything, msg.DeliveryID, mock.MatchedBy(func(h *domain.History) bool {
		return h.ChannelType == domain.ChannelDigitalMail && h.Status == domain.StatusSent
	})).Return(nil).Once()

	p := NewLetterProcessor(repo, digital, snail, fastRetryPolicy(3), discardLogger())
	err := p.Dispatch(context.Background(), msg.DeliveryID)

	assert.NoError(t, err)
	snail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

// Worked fallback sequence: three attempts per leg, the digital service
// keeps answering "not sent", the physical leg succeeds first try. The
// terminal record belongs to SNAIL_MAIL and carries the postal destination.
func TestLetterProcessor_FallsBackToSnailMail(t *testing.T) {
	repo := new(MockMessageRepository)
	digital := new(MockDigitalMailSender)
	snail := new(MockSnailMailSender)
	msg := newLetterMessage(t, []domain.MailAttachment{
		{FileName: "notice.pdf", DeliveryMode: domain.DeliveryModeEither},
	})

	repo.On("FindByDeliveryID", mock.Anything, msg.DeliveryID).Return(msg, nil)
	digital.On("Send", mock.Anything, mock.Anything).Return(&senders.SendResult{Sent: false}, nil)
	snail.On("Send", mock.Anything, mock.Anything).Return(&senders.SendResult{Sent: true}, nil).Once()
	repo.On("Resolve", mock.Anything, msg.DeliveryID, mock.MatchedBy(func(h *domain.History) bool {
		return h.ChannelType == domain.ChannelSnailMail &&
			h.Status == domain.StatusSent &&
			h.Destination != nil && *h.Destination == "Storgatan 1, 12345 Stockholm"
	})).Return(nil).Once()

	p := NewLetterProcessor(repo, digital, snail, fastRetryPolicy(3), discardLogger())
	err := p.Dispatch(context.Background(), msg.DeliveryID)

	assert.NoError(t, err)
	digital.AssertNumberOfCalls(t, "Send", 3)
	snail.AssertNumberOfCalls(t, "Send", 1)
	repo.AssertExpectations(t)
}

func TestLetterProcessor_DigitalOnlyNeverFallsBack(t *testing.T) {
	repo := new(MockMessageRepository)
	digital := new(MockDigitalMailSender)
	snail := new(MockSnailMailSender)
	msg := newLetterMessage(t, []domain.MailAttachment{
		{FileName: "confidential.pdf", DeliveryMode: domain.DeliveryModeDigitalOnly},
	})

	repo.On("FindByDeliveryID", mock.Anything, msg.DeliveryID).Return(msg, nil)
	digital.On("Send", mock.Anything, mock.Anything).Return(&senders.SendResult{Sent: false}, nil)
	repo.On("Resolve", mock.Anything, msg.DeliveryID, mock.MatchedBy(func(h *domain.History) bool {
		return h.ChannelType == domain.ChannelDigitalMail && h.Status == domain.StatusNotSent
	})).Return(nil).Once()

	p := NewLetterProcessor(repo, digital, snail, fastRetryPolicy(2), discardLogger())
	err := p.Dispatch(context.Background(), msg.DeliveryID)

	assert.NoError(t, err)
	digital.AssertNumberOfCalls(t, "Send", 2)
	snail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestLetterProcessor_BothLegsExhaust(t *testing.T) {
	repo := new(MockMessageRepository)
	digital := new(MockDigitalMailSender)
	snail := new(MockSnailMailSender)
	msg := newLetterMessage(t, []domain.MailAttachment{
		{FileName: "notice.pdf", DeliveryMode: domain.DeliveryModeSnailOnly},
	})

	repo.On("FindByDeliveryID", mock.Anything, msg.DeliveryID).Return(msg, nil)
	digital.On("Send", mock.Anything, mock.Anything).Return(&senders.SendResult{Sent: false}, nil)
	snail.On("Send", mock.Anything, mock.Anything).Return(&senders.SendResult{Sent: false}, nil)
	repo.On("Resolve", mock.Anything, msg.DeliveryID, mock.MatchedBy(func(h *domain.History) bool {
		return h.ChannelType == domain.ChannelSnailMail && h.Status == domain.StatusNotSent
	})).Return(nil).Once()

	p := NewLetterProcessor(repo, digital, snail, fastRetryPolicy(2), discardLogger())
	err := p.Dispatch(context.Background(), msg.DeliveryID)

	assert.NoError(t, err)
	digital.AssertNumberOfCalls(t, "Send", 2)
	snail.AssertNumberOfCalls(t, "Send", 2)
	repo.AssertExpectations(t)
}

// The digital leg only forwards digital-eligible attachments and the
// physical leg only forwards snail-eligible ones.
func TestLetterProcessor_SplitsAttachmentsPerLeg(t *testing.T) {
	repo := new(MockMessageRepository)
	digital := new(MockDigitalMailSender)
	snail := new(MockSnailMailSender)
	msg := newLetterMessage(t, []domain.MailAttachment{
		{FileName: "summary.pdf", DeliveryMode: domain.DeliveryModeDigitalOnly},
		{FileName: "form.pdf", DeliveryMode: domain.DeliveryModeEither},
		{FileName: "return-envelope.pdf", DeliveryMode: domain.DeliveryModeSnailOnly},
	})

	repo.On("FindByDeliveryID", mock.Anything, msg.DeliveryID).Return(msg, nil)
	digital.On("Send", mock.Anything, mock.MatchedBy(func(req senders.DigitalMailSendRequest) bool {
		return len(req.Attachments) == 2 &&
			req.Attachments[0].FileName == "summary.pdf" &&
			req.Attachments[1].FileName == "form.pdf"
	})).Return(&senders.SendResult{Sent: false}, nil)
	snail.On("Send", mock.Anything, mock.MatchedBy(func(req senders.SnailMailSendRequest) bool {
		return len(req.Attachments) == 2 &&
			req.Attachments[0].FileName == "form.pdf" &&
			req.Attachments[1].FileName == "return-envelope.pdf"
	})).Return(&senders.SendResult{Sent: true}, nil)
	repo.On("Resolve", mock.Anything, msg.DeliveryID, mock.Anything).Return(nil)

	p := NewLetterProcessor(repo, digital, snail, fastRetryPolicy(1), discardLogger())
	err := p.Dispatch(context.Background(), msg.DeliveryID)

	assert.NoError(t, err)
	digital.AssertExpectations(t)
	snail.AssertExpectations(t)
}
