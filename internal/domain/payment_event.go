package domain

import "encoding/json"

type EventType string

const (
	// EventPaymentCompleted is the one event type this system acts on.
	// Everything else is classified as EventOther and acknowledged untouched,
	// so new processor event types fail safe.
	EventPaymentCompleted EventType = "payment.completed"
	EventOther            EventType = "other"
)

// PaymentEvent is one decoded, signature-verified webhook delivery. The
// processor delivers at least once, so the same EventID may arrive multiple
// times; all deliveries with one EventID are the same logical event.
type PaymentEvent struct {
	EventID       string
	Type          EventType
	RawPayload    json.RawMessage
	ProductID     string
	ImageURL      string
	CustomerEmail string
	Recipient     Recipient
}

type Recipient struct {
	Name    string
	Email   string
	Address Address
}

type Address struct {
	Line1      string
	Line2      string
	City       string
	PostalCode string
	State      string
	Country    string
}

// Deliverable reports whether the address is complete enough to ship to.
func (a Address) Deliverable() bool {
	return a.Line1 != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}
