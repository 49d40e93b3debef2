package domain

import "context"

// ContactMethod is the channel named by a feedback preference.
type ContactMethod string

const (
	ContactMethodEmail ContactMethod = "EMAIL"
	ContactMethodSMS   ContactMethod = "SMS"
)

// FeedbackPreference is one externally owned channel preference for a party.
type FeedbackPreference struct {
	ContactMethod ContactMethod `json:"contact_method"`
	Wanted        bool          `json:"wanted"`
	Destination   string        `json:"destination"`
}

// Usable reports whether the preference can resolve a composite message:
// it must name a contact method and the party must actually want contact.
func (p FeedbackPreference) Usable() bool {
	return p.Wanted && (p.ContactMethod == ContactMethodEmail || p.ContactMethod == ContactMethodSMS)
}

// PreferenceResolver looks up a party's feedback preferences from the
// external feedback-settings service.
type PreferenceResolver interface {
	PreferencesFor(ctx context.Context, partyID string) ([]FeedbackPreference, error)
}
