package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		env     string
		debugOn bool
	}{
		{env: "local", debugOn: true},
		{env: "dev", debugOn: true},
		{env: "production", debugOn: false},
		{env: "", debugOn: false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			log := New(tt.env)
			require.NotNil(t, log)
			assert.Equal(t, tt.debugOn, log.Core().Enabled(zap.DebugLevel))
			assert.True(t, log.Core().Enabled(zap.InfoLevel))
		})
	}
}
