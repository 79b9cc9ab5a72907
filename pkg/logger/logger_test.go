package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/config"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(&config.LogConfig{Level: "debug", Format: format})
		require.NoError(t, err, format)
		assert.NotNil(t, l)
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}
