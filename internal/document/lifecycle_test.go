package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"draft to issued", StatusDraft, StatusIssued, true},
		{"issued to voided", StatusIssued, StatusVoided, true},
		{"draft to voided skips issuance", StatusDraft, StatusVoided, false},
		{"voided is terminal", StatusVoided, StatusIssued, false},
		{"issued back to draft", StatusIssued, StatusDraft, false},
		{"unknown source", Status("cancelled"), StatusVoided, false},
		{"unknown target", StatusIssued, Status("archived"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.from, got, "status must not move on a rejected transition")

			var terr *InvalidTransitionError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, tt.from, terr.From)
			assert.Equal(t, tt.to, terr.To)
		})
	}
}

func TestVoidable(t *testing.T) {
	assert.True(t, (&Record{Status: StatusIssued}).Voidable())
	assert.False(t, (&Record{Status: StatusVoided}).Voidable())
	assert.False(t, (&Record{Status: StatusDraft}).Voidable())
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusDraft))
	assert.True(t, ValidStatus(StatusIssued))
	assert.True(t, ValidStatus(StatusVoided))
	assert.False(t, ValidStatus(Status("")))
	assert.False(t, ValidStatus(Status("open")))
}
