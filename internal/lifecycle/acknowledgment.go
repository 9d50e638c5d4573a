package lifecycle

import "strings"

// AckStatus enumerates the states of a rider acknowledgment. The row is
// created PENDING when the artist first shares the rider with the
// venue. ACKNOWLEDGED, ACCEPTED and REJECTED are terminal;
// MODIFICATIONS_PROPOSED loops while the parties negotiate.
type AckStatus string

const (
	AckPending               AckStatus = "PENDING"
	AckAcknowledged          AckStatus = "ACKNOWLEDGED"
	AckModificationsProposed AckStatus = "MODIFICATIONS_PROPOSED"
	AckAccepted              AckStatus = "ACCEPTED"
	AckRejected              AckStatus = "REJECTED"
)

// Terminal reports whether the acknowledgment has reached a final
// resolution.
func (s AckStatus) Terminal() bool {
	return s == AckAcknowledged || s == AckAccepted || s == AckRejected
}

// RespondDecision is the artist- or venue-side answer to the most
// recent modification proposal.
type RespondDecision string

const (
	DecisionAccept         RespondDecision = "accept"
	DecisionReject         RespondDecision = "reject"
	DecisionCounterPropose RespondDecision = "counter-propose"
)

// ValidateProposal checks the three required fields of a modification
// proposal. All must be non-empty after trimming.
func ValidateProposal(fieldName, proposedValue, reason string) error {
	if strings.TrimSpace(fieldName) == "" ||
		strings.TrimSpace(proposedValue) == "" ||
		strings.TrimSpace(reason) == "" {
		return ErrValidation
	}
	return nil
}

// CanAcknowledge checks the venue's accept-as-is action. Only the venue
// may acknowledge, and only while the rider is still PENDING.
func CanAcknowledge(status AckStatus, caller Party) error {
	if caller != PartyVenue {
		return ErrForbidden
	}
	if status != AckPending {
		return ErrConflict
	}
	return nil
}

// CanPropose enforces who may add the next modification proposal.
// lastProposer is the side that authored the latest log entry; pass
// hasProposals false when the log is empty.
//
// The opening proposal always comes from the venue reviewing the rider.
// After that, turn-taking applies: only the counterpart of the last
// proposer may propose, so a party can never answer its own proposal.
// A same-side repeat is a Conflict, not a Forbidden, because the party
// is authorized in general and merely out of turn.
func CanPropose(status AckStatus, lastProposer Party, hasProposals bool, caller Party) error {
	if !caller.Valid() {
		return ErrForbidden
	}
	if status.Terminal() {
		return ErrConflict
	}
	if !hasProposals {
		if caller != PartyVenue {
			return ErrForbidden
		}
		return nil
	}
	if caller == lastProposer {
		return ErrConflict
	}
	return nil
}

// CanRespond checks whether caller may answer the latest proposal.
// Responses are only meaningful while modifications are on the table,
// and only the side that did not author the last proposal may respond.
func CanRespond(status AckStatus, lastProposer Party, caller Party) error {
	if status != AckModificationsProposed {
		return ErrConflict
	}
	if caller != lastProposer.Counterpart() {
		return ErrForbidden
	}
	return nil
}

// CanFinalize checks the explicit terminal resolution of an
// acknowledgment. outcome must be ACCEPTED or REJECTED and the
// acknowledgment must not already be terminal.
func CanFinalize(status AckStatus, outcome AckStatus) error {
	if outcome != AckAccepted && outcome != AckRejected {
		return ErrValidation
	}
	if status.Terminal() {
		return ErrConflict
	}
	return nil
}
