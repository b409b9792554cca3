package ierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeny_MatchesDeniedKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Deny(ReasonProjectInactive))

	assert.ErrorIs(t, err, ErrDenied)
	assert.NotErrorIs(t, err, ErrIntegrity)

	reason, ok := ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ReasonProjectInactive, reason)
}

func TestReasonOf_NonDenial(t *testing.T) {
	_, ok := ReasonOf(errors.New("boom"))
	assert.False(t, ok)
}

func TestIntegrityAndUpstream_Kinds(t *testing.T) {
	cause := errors.New("conn reset")

	up := Upstream("find project", cause)
	assert.ErrorIs(t, up, ErrUpstream)
	assert.ErrorIs(t, up, cause)

	integrity := Integrity("subscription for user %s has no status", "user_1")
	assert.ErrorIs(t, integrity, ErrIntegrity)
	assert.Contains(t, integrity.Error(), "user_1")
}

func TestReasonMessages_Distinct(t *testing.T) {
	reasons := []Reason{
		ReasonInvalidID,
		ReasonAuthRequired,
		ReasonProjectNotFound,
		ReasonProjectInactive,
		ReasonSubscriptionExpired,
		ReasonFetchError,
	}
	seen := make(map[string]Reason)
	for _, r := range reasons {
		msg := r.Message()
		require.NotEmpty(t, msg, "reason %s", r)
		if prev, dup := seen[msg]; dup {
			t.Fatalf("reasons %s and %s share message %q", prev, r, msg)
		}
		seen[msg] = r
	}

	assert.Equal(t, ReasonFetchError.Message(), Reason("UNKNOWN").Message())
}
