package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOperator(t *testing.T) {
	op, err := NewOperator(NewOperatorParams{
		ID:          "op1",
		Username:    "dean",
		DisplayName: "Dean of Students",
		Password:    "correct-horse",
		Role:        RoleAdmin,
	})
	require.NoError(t, err)

	assert.NoError(t, op.CheckPassword("correct-horse"))
	assert.ErrorIs(t, op.CheckPassword("wrong"), ErrWrongPassword)
	assert.True(t, op.CanManageRecords())
}

func TestNewOperator_Validation(t *testing.T) {
	_, err := NewOperator(NewOperatorParams{ID: "op1", Username: "x", Password: "longenough"})
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = NewOperator(NewOperatorParams{ID: "op1", Username: "dean", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestOperator_Roles(t *testing.T) {
	op, err := NewOperator(NewOperatorParams{
		ID:       "op2",
		Username: "reviewer",
		Password: "longenough",
		Role:     RoleReviewer,
	})
	require.NoError(t, err)

	assert.True(t, op.CanDecideAppeals())
	assert.False(t, op.CanManageRecords())
}
