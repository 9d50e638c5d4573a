package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanSend(t *testing.T) {
	assert.NoError(t, CanSend(ContractDraft))
	assert.ErrorIs(t, CanSend(ContractPendingSignatures), ErrConflict)
	assert.ErrorIs(t, CanSend(ContractSigned), ErrConflict)
	assert.ErrorIs(t, CanSend(ContractCancelled), ErrConflict)
}

func TestCanSign(t *testing.T) {
	assert.NoError(t, CanSign(ContractDraft, false))
	assert.NoError(t, CanSign(ContractPendingSignatures, false))

	// A party that already signed may not sign again.
	assert.ErrorIs(t, CanSign(ContractPendingSignatures, true), ErrConflict)
	assert.ErrorIs(t, CanSign(ContractDraft, true), ErrConflict)

	// Terminal states accept no signatures.
	assert.ErrorIs(t, CanSign(ContractSigned, false), ErrConflict)
	assert.ErrorIs(t, CanSign(ContractRejected, false), ErrConflict)
	assert.ErrorIs(t, CanSign(ContractCancelled, false), ErrConflict)
}

func TestStatusAfterSign(t *testing.T) {
	assert.Equal(t, ContractPendingSignatures, StatusAfterSign(true, false))
	assert.Equal(t, ContractPendingSignatures, StatusAfterSign(false, true))
	assert.Equal(t, ContractSigned, StatusAfterSign(true, true))
}

func TestCanReject(t *testing.T) {
	assert.NoError(t, CanReject(ContractDraft))
	assert.NoError(t, CanReject(ContractPendingSignatures))
	assert.ErrorIs(t, CanReject(ContractSigned), ErrConflict)
	assert.ErrorIs(t, CanReject(ContractRejected), ErrConflict)
	assert.ErrorIs(t, CanReject(ContractCancelled), ErrConflict)
}

func TestCanCancel(t *testing.T) {
	assert.NoError(t, CanCancel(ContractDraft))
	assert.NoError(t, CanCancel(ContractPendingSignatures))
	assert.ErrorIs(t, CanCancel(ContractSigned), ErrConflict)
	assert.ErrorIs(t, CanCancel(ContractRejected), ErrConflict)
	assert.ErrorIs(t, CanCancel(ContractCancelled), ErrConflict)
}

// Scenario four from the acceptance list: draft, artist signs (moving
// the contract into signature collection), venue signs, fully signed.
func TestSignBothParties(t *testing.T) {
	status := ContractDraft

	assert.NoError(t, CanSign(status, false))
	status = StatusAfterSign(true, false)
	assert.Equal(t, ContractPendingSignatures, status)

	// Artist signing again must fail without touching the timestamp.
	assert.ErrorIs(t, CanSign(status, true), ErrConflict)

	assert.NoError(t, CanSign(status, false))
	status = StatusAfterSign(true, true)
	assert.Equal(t, ContractSigned, status)

	// Fully signed contracts cannot be rejected.
	assert.ErrorIs(t, CanReject(status), ErrConflict)
}
