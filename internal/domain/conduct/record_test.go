package conduct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/student"
)

func TestNewConductRecord(t *testing.T) {
	rec, err := NewConductRecord(NewRecordParams{
		ID:           "r1",
		StudentID:    "s1",
		Reason:       "late for class",
		ScoreChange:  -5,
		ScoreAfter:   95,
		OperatorName: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, RecordValid, rec.Status)
	assert.Equal(t, student.Score(-5), rec.ScoreChange)
	assert.Equal(t, student.Score(95), rec.ScoreAfter)
}

func TestNewConductRecord_Validation(t *testing.T) {
	tests := []struct {
		name    string
		params  NewRecordParams
		wantErr error
	}{
		{
			name:    "zero score change",
			params:  NewRecordParams{ID: "r1", StudentID: "s1", Reason: "x", ScoreChange: 0},
			wantErr: ErrZeroScoreChange,
		},
		{
			name:    "blank reason",
			params:  NewRecordParams{ID: "r1", StudentID: "s1", Reason: "  \t", ScoreChange: -5},
			wantErr: ErrEmptyReason,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConductRecord(tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConductRecord_ReversalDelta(t *testing.T) {
	rec, err := NewConductRecord(NewRecordParams{
		ID:          "r1",
		StudentID:   "s1",
		Reason:      "late",
		ScoreChange: -5,
		ScoreAfter:  95,
	})
	require.NoError(t, err)

	// valid record: deleting it gives the points back
	assert.Equal(t, student.Score(5), rec.ReversalDelta())

	// invalidated record is already excluded from the score, deleting it
	// must not touch the score again
	rec.Invalidate()
	assert.Equal(t, student.Score(0), rec.ReversalDelta())

	rec.Restore()
	assert.Equal(t, student.Score(5), rec.ReversalDelta())
}
