package senders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/opencomms/messaging-dispatch/internal/dispatch_service/domain"
)

// DigitalInvoiceSendRequest is the digital-invoice service's wire shape.
type DigitalInvoiceSendRequest struct {
	PartyID       string                  `json:"party_id"`
	InvoiceType   string                  `json:"invoice_type,omitempty"`
	Subject       string                  `json:"subject,omitempty"`
	Reference     string                  `json:"reference,omitempty"`
	Payable       bool                    `json:"payable"`
	AmountDue     string                  `json:"amount_due,omitempty"`
	DueDate       string                  `json:"due_date,omitempty"`
	AccountNumber string                  `json:"account_number,omitempty"`
	Attachments   []domain.MailAttachment `json:"attachments,omitempty"`
}

// DigitalInvoiceSender calls the remote digital-invoice service.
type DigitalInvoiceSender struct {
	httpSender
}

func NewDigitalInvoiceSender(logger *slog.Logger, baseURL, token string, httpClient *http.Client) *DigitalInvoiceSender {
	return &DigitalInvoiceSender{httpSender: newHTTPSender(logger, "digital_invoice", baseURL, token, httpClient)}
}

// NewDigitalInvoiceSendRequest maps the original request into the adapter shape.
func NewDigitalInvoiceSendRequest(req domain.DigitalInvoiceRequest) DigitalInvoiceSendRequest {
	return DigitalInvoiceSendRequest{
		PartyID:       req.PartyID,
		InvoiceType:   req.InvoiceType,
		Subject:       req.Subject,
		Reference:     req.Reference,
		Payable:       req.Payable,
		AmountDue:     req.AmountDue,
		DueDate:       req.DueDate,
		AccountNumber: req.AccountNumber,
		Attachments:   req.Attachments,
	}
}

func (s *DigitalInvoiceSender) Send(ctx context.Context, req DigitalInvoiceSendRequest) (*SendResult, error) {
	s.logger.DebugContext(ctx, "Sending digital invoice", "party_id", req.PartyID)
	return s.post(ctx, "/send/digitalinvoice", req)
}
