package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsDefaults(t *testing.T) {
	cmd := newCommand()

	status, err := cmd.Flags().GetString("status")
	require.NoError(t, err)
	assert.Equal(t, "failed", status)

	prescreen, err := cmd.Flags().GetBool("prescreen")
	require.NoError(t, err)
	assert.False(t, prescreen)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    options
		wantErr bool
	}{
		{"failed", options{status: "failed"}, false},
		{"pending with limit", options{status: "pending", limit: 10}, false},
		{"unknown status", options{status: "archived"}, true},
		{"negative limit", options{status: "failed", limit: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRejectsUnknownStatusBeforeStarting(t *testing.T) {
	cmd := newCommand()
	cmd.SetArgs([]string{"--status", "archived"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "archived")
}
