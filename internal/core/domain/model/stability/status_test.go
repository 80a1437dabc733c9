package stability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coldchain/internal/core/domain/model/stability"
)

func TestStatus_Validate(t *testing.T) {
	assert.NoError(t, stability.Active.Validate())
	assert.NoError(t, stability.Expired.Validate())
	assert.NoError(t, stability.Exceeded.Validate())
	assert.Error(t, stability.StatusUnknown.Validate())
	assert.Error(t, stability.Status(99).Validate())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "Active", stability.Active.String())
	assert.Equal(t, "Expired", stability.Expired.String())
	assert.Equal(t, "Exceeded", stability.Exceeded.String())
	assert.Equal(t, "Unknown", stability.StatusUnknown.String())
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, stability.Active.IsTerminal())
	assert.True(t, stability.Expired.IsTerminal())
	assert.True(t, stability.Exceeded.IsTerminal())
}

func TestAlert_TerminalStatus(t *testing.T) {
	tests := []struct {
		name   string
		alert  stability.Alert
		status stability.Status
		ok     bool
	}{
		{"max excursion exceeded", stability.AlertMaxExcursionExceeded, stability.Exceeded, true},
		{"stability time expired", stability.AlertStabilityTimeExpired, stability.Expired, true},
		{"no alert", stability.AlertNone, stability.StatusUnknown, false},
		{"unrecognized alert", stability.Alert("SOMETHING_ELSE"), stability.StatusUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, ok := tt.alert.TerminalStatus()

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.status, status)
		})
	}
}
