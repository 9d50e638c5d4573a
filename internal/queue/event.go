// Package queue defines message payloads exchanged over the message broker.
package queue

// Notification kinds, one per workflow event that addresses a user.
// The consumer (and eventually the email/SMS provider) picks a message
// template from the kind; Payload carries the template variables.
const (
	KindBookingRequested  = "booking.requested"
	KindBookingStatus     = "booking.status_changed"
	KindRiderShared       = "rider.shared"
	KindRiderAcknowledged = "rider.acknowledged"
	KindRiderProposal     = "rider.modification_proposed"
	KindRiderResolved     = "rider.resolved"
	KindContractGenerated = "contract.generated"
	KindContractStatus    = "contract.status_changed"
)

// NotificationEvent is published after a state transition commits. It
// carries enough context for downstream consumers to address and format
// a message without querying the primary database. Delivery is
// best-effort: the transition is the source of truth and never waits on
// or fails with the broker.
type NotificationEvent struct {
	RecipientID uint64            `json:"recipient_id"`
	Kind        string            `json:"kind"`
	BookingID   uint64            `json:"booking_id,omitempty"`
	Payload     map[string]string `json:"payload,omitempty"`
	OccurredAt  string            `json:"occurred_at"`
}
