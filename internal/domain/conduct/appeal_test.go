package conduct

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/student"
)

func TestDecide_TransitionTable(t *testing.T) {
	tests := []struct {
		name       string
		from       AppealStatus
		to         AppealStatus
		wantStatus RecordStatus
		wantSign   int
		wantOut    Outcome
	}{
		{"first approval", AppealPending, AppealApproved, RecordInvalid, -1, OutcomeApproved},
		{"first rejection", AppealPending, AppealRejected, RecordValid, 0, OutcomeRejected},
		{"reversal approved to rejected", AppealApproved, AppealRejected, RecordValid, +1, OutcomeReversedToRejected},
		{"reversal rejected to approved", AppealRejected, AppealApproved, RecordInvalid, -1, OutcomeReversedToApproved},
		{"approve again", AppealApproved, AppealApproved, RecordInvalid, 0, OutcomeUnchanged},
		{"reject again", AppealRejected, AppealRejected, RecordValid, 0, OutcomeUnchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Decide(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, tr.RecordStatus)
			assert.Equal(t, tt.wantSign, tr.DeltaSign)
			assert.Equal(t, tt.wantOut, tr.Outcome)
		})
	}
}

func TestDecide_RejectsNonDecisions(t *testing.T) {
	_, err := Decide(AppealApproved, AppealPending)
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = Decide(AppealPending, AppealStatus("closed"))
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestDecide_ScoreDelta(t *testing.T) {
	// record deducted 5 points; approval must give them back
	tr, err := Decide(AppealPending, AppealApproved)
	require.NoError(t, err)
	assert.Equal(t, student.Score(5), tr.ScoreDelta(-5))

	// reversal re-applies the original deduction
	tr, err = Decide(AppealApproved, AppealRejected)
	require.NoError(t, err)
	assert.Equal(t, student.Score(-5), tr.ScoreDelta(-5))

	// no-op carries no delta
	tr, err = Decide(AppealApproved, AppealApproved)
	require.NoError(t, err)
	assert.Equal(t, student.Score(0), tr.ScoreDelta(-5))
}

// Cycling approved -> rejected -> approved must net out to the effect of
// a single approval, for any score change.
func TestDecide_ReversalLaw(t *testing.T) {
	change := student.Score(-7.5)

	first, err := Decide(AppealPending, AppealApproved)
	require.NoError(t, err)

	back, err := Decide(AppealApproved, AppealRejected)
	require.NoError(t, err)

	again, err := Decide(AppealRejected, AppealApproved)
	require.NoError(t, err)

	total := first.ScoreDelta(change) + back.ScoreDelta(change) + again.ScoreDelta(change)
	assert.Equal(t, first.ScoreDelta(change), total)
	assert.Equal(t, first.RecordStatus, again.RecordStatus)
}

func TestNewAppeal(t *testing.T) {
	a, err := NewAppeal(NewAppealParams{
		ID:        "a1",
		StudentID: "s1",
		RecordID:  "r1",
		Reason:    "the incident was misattributed",
	})
	require.NoError(t, err)
	assert.Equal(t, AppealPending, a.Status)
	assert.True(t, a.ProcessedAt.IsZero())

	_, err = NewAppeal(NewAppealParams{ID: "a2", StudentID: "s1", RecordID: "r1", Reason: "   "})
	assert.ErrorIs(t, err, ErrEmptyReason)
}

func TestAppeal_ApplyDecision(t *testing.T) {
	a, err := NewAppeal(NewAppealParams{
		ID:        "a1",
		StudentID: "s1",
		RecordID:  "r1",
		Reason:    "disputed",
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	a.ApplyDecision(AppealApproved, "dean", now)

	assert.Equal(t, AppealApproved, a.Status)
	assert.Equal(t, "dean", a.ProcessedBy)
	assert.Equal(t, now, a.ProcessedAt)
}

func TestOutcome_Message(t *testing.T) {
	for _, o := range []Outcome{
		OutcomeApproved,
		OutcomeRejected,
		OutcomeReversedToRejected,
		OutcomeReversedToApproved,
		OutcomeUnchanged,
	} {
		assert.NotEmpty(t, o.Message())
		assert.NotEqual(t, "unknown outcome", o.Message())
	}
}
