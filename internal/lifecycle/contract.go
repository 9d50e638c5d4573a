package lifecycle

// ContractStatus enumerates the sign-off states of a generated
// contract. Content is immutable once generated; regeneration creates a
// new version row, so the state machine only governs sign-off.
type ContractStatus string

const (
	ContractDraft             ContractStatus = "DRAFT"
	ContractPendingSignatures ContractStatus = "PENDING_SIGNATURES"
	ContractSigned            ContractStatus = "SIGNED"
	ContractRejected          ContractStatus = "REJECTED"
	ContractCancelled         ContractStatus = "CANCELLED"
)

// Terminal reports whether the contract has reached a final state.
func (s ContractStatus) Terminal() bool {
	return s == ContractSigned || s == ContractRejected || s == ContractCancelled
}

// CanSend checks the explicit move from DRAFT to PENDING_SIGNATURES.
func CanSend(status ContractStatus) error {
	if status != ContractDraft {
		return ErrConflict
	}
	return nil
}

// CanSign checks a signature attempt by one party. alreadySigned is
// whether that party's signed-at timestamp is already set; a second
// signature from the same side is a Conflict and must never overwrite
// the first timestamp. Signing is allowed from DRAFT (which implicitly
// sends the contract) and from PENDING_SIGNATURES.
func CanSign(status ContractStatus, alreadySigned bool) error {
	if status != ContractDraft && status != ContractPendingSignatures {
		return ErrConflict
	}
	if alreadySigned {
		return ErrConflict
	}
	return nil
}

// StatusAfterSign returns the status a contract takes after a valid
// signature: SIGNED once both timestamps are present, otherwise
// PENDING_SIGNATURES.
func StatusAfterSign(artistSigned, venueSigned bool) ContractStatus {
	if artistSigned && venueSigned {
		return ContractSigned
	}
	return ContractPendingSignatures
}

// CanReject allows rejection from any non-terminal state, regardless of
// how many signatures have been collected.
func CanReject(status ContractStatus) error {
	if status.Terminal() {
		return ErrConflict
	}
	return nil
}

// CanCancel allows withdrawal of a contract that has not yet been fully
// signed, from DRAFT or PENDING_SIGNATURES only.
func CanCancel(status ContractStatus) error {
	if status != ContractDraft && status != ContractPendingSignatures {
		return ErrConflict
	}
	return nil
}
