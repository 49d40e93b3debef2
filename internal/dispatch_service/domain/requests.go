package domain

// Request DTOs below are the shapes serialized into Message.Content by the
// intake layer. They are decoded fresh on every dispatch attempt; the stored
// bytes are the sole source of truth for what was requested.

// EmailRequest is the original request for an EMAIL delivery.
type EmailRequest struct {
	EmailAddress string            `json:"email_address"`
	Subject      string            `json:"subject"`
	Message      string            `json:"message"`
	HTMLMessage  string            `json:"html_message,omitempty"`
	SenderName   string            `json:"sender_name,omitempty"`
	SenderEmail  string            `json:"sender_email,omitempty"`
	ReplyTo      string            `json:"reply_to,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	Attachments  []EmailAttachment `json:"attachments,omitempty"`
}

// EmailAttachment carries base64-encoded file content.
type EmailAttachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

// SMSRequest is the original request for an SMS delivery.
type SMSRequest struct {
	MobileNumber string `json:"mobile_number"`
	Sender       string `json:"sender,omitempty"`
	Message      string `json:"message"`
	Priority     string `json:"priority,omitempty"`
}

// WebMessageRequest is the original request for a WEB_MESSAGE delivery.
type WebMessageRequest struct {
	PartyID     string                 `json:"party_id"`
	Message     string                 `json:"message"`
	OepInstance string                 `json:"oep_instance,omitempty"`
	Attachments []WebMessageAttachment `json:"attachments,omitempty"`
}

// WebMessageAttachment carries base64-encoded file content.
type WebMessageAttachment struct {
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	Base64Data string `json:"base64_data"`
}

// DigitalMailRequest is the original request for a DIGITAL_MAIL delivery.
type DigitalMailRequest struct {
	PartyID     string           `json:"party_id"`
	Subject     string           `json:"subject"`
	Body        string           `json:"body"`
	ContentType string           `json:"content_type,omitempty"`
	Sender      string           `json:"sender,omitempty"`
	Attachments []MailAttachment `json:"attachments,omitempty"`
}

// SnailMailRequest is the original request for a SNAIL_MAIL delivery.
type SnailMailRequest struct {
	PartyID     string           `json:"party_id"`
	Department  string           `json:"department,omitempty"`
	Deviation   string           `json:"deviation,omitempty"`
	Address     PostalAddress    `json:"address"`
	Attachments []MailAttachment `json:"attachments,omitempty"`
}

// PostalAddress is the resolved physical destination for a snail-mail
// delivery. Resolution happens upstream; this core only carries it through.
type PostalAddress struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Street    string `json:"street"`
	ZipCode   string `json:"zip_code"`
	City      string `json:"city"`
	Country   string `json:"country,omitempty"`
	CareOf    string `json:"care_of,omitempty"`
}

// String renders the address on one line for history records.
func (a PostalAddress) String() string {
	s := a.Street + ", " + a.ZipCode + " " + a.City
	if a.Country != "" {
		s += ", " + a.Country
	}
	return s
}

// AttachmentDeliveryMode restricts which letter channel an attachment may
// travel over.
type AttachmentDeliveryMode string

const (
	DeliveryModeDigitalOnly AttachmentDeliveryMode = "DIGITAL_ONLY"
	DeliveryModeSnailOnly   AttachmentDeliveryMode = "SNAIL_ONLY"
	DeliveryModeEither      AttachmentDeliveryMode = "EITHER"
)

// MailAttachment is a letter/digital-mail attachment. DeliveryMode is only
// meaningful inside a LetterRequest; plain digital-mail and snail-mail
// requests ignore it.
type MailAttachment struct {
	FileName     string                 `json:"file_name"`
	ContentType  string                 `json:"content_type"`
	Content      string                 `json:"content"`
	DeliveryMode AttachmentDeliveryMode `json:"delivery_mode,omitempty"`
}

// IntendedForDigitalMail reports whether the attachment may be sent as
// digital mail.
func (a MailAttachment) IntendedForDigitalMail() bool {
	return a.DeliveryMode == DeliveryModeDigitalOnly || a.DeliveryMode == DeliveryModeEither || a.DeliveryMode == ""
}

// IntendedForSnailMail reports whether the attachment may be sent as
// physical mail.
func (a MailAttachment) IntendedForSnailMail() bool {
	return a.DeliveryMode == DeliveryModeSnailOnly || a.DeliveryMode == DeliveryModeEither
}

// LetterRequest is the original request for a LETTER delivery: digital mail
// first, snail mail as fallback when an attachment permits it.
type LetterRequest struct {
	PartyID     string           `json:"party_id"`
	Subject     string           `json:"subject"`
	Body        string           `json:"body"`
	ContentType string           `json:"content_type,omitempty"`
	Sender      string           `json:"sender,omitempty"`
	Department  string           `json:"department,omitempty"`
	Deviation   string           `json:"deviation,omitempty"`
	Address     *PostalAddress   `json:"address,omitempty"`
	Attachments []MailAttachment `json:"attachments,omitempty"`
}

// DigitalMailAttachments returns the attachments eligible for the digital
// leg of a letter.
func (r LetterRequest) DigitalMailAttachments() []MailAttachment {
	var out []MailAttachment
	for _, a := range r.Attachments {
		if a.IntendedForDigitalMail() {
			out = append(out, a)
		}
	}
	return out
}

// SnailMailAttachments returns the attachments eligible for the physical
// fallback leg of a letter.
func (r LetterRequest) SnailMailAttachments() []MailAttachment {
	var out []MailAttachment
	for _, a := range r.Attachments {
		if a.IntendedForSnailMail() {
			out = append(out, a)
		}
	}
	return out
}

// DigitalInvoiceRequest is the original request for a DIGITAL_INVOICE
// delivery.
type DigitalInvoiceRequest struct {
	PartyID       string           `json:"party_id"`
	InvoiceType   string           `json:"invoice_type,omitempty"`
	Subject       string           `json:"subject,omitempty"`
	Reference     string           `json:"reference,omitempty"`
	Payable       bool             `json:"payable"`
	AmountDue     string           `json:"amount_due,omitempty"`
	DueDate       string           `json:"due_date,omitempty"`
	AccountNumber string           `json:"account_number,omitempty"`
	Attachments   []MailAttachment `json:"attachments,omitempty"`
}

// SlackRequest is the original request for a SLACK (chat) delivery.
type SlackRequest struct {
	Token   string `json:"token,omitempty"`
	Channel string `json:"channel"`
	Message string `json:"message"`
}

// MessageRequest is the channel-agnostic original request of a composite
// MESSAGE delivery; the concrete channel and destination are resolved from
// the recipient's feedback preferences at dispatch time.
type MessageRequest struct {
	PartyID string `json:"party_id"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
	Sender  string `json:"sender,omitempty"`
}
