package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectStatusString(t *testing.T) {
	assert.Equal(t, "Deploying", ProjectStatusDeploying.String())
	assert.Equal(t, "DeployFailed", ProjectStatus(6).String())
	assert.Equal(t, "Unknown(9)", ProjectStatus(9).String())
}

func TestParseRolloutHealth(t *testing.T) {
	tests := []struct {
		in       string
		want     RolloutHealth
		terminal bool
	}{
		{"Healthy", RolloutHealthy, true},
		{"Degraded", RolloutDegraded, true},
		{"InvalidSpec", RolloutInvalidSpec, true},
		{"Progressing", RolloutProgressing, false},
		{"Suspended", RolloutProgressing, false},
		{"", RolloutProgressing, false},
	}
	for _, tt := range tests {
		got := ParseRolloutHealth(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.terminal, got.IsTerminal(), tt.in)
	}
}
