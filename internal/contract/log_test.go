package contract

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLogger(t *testing.T) {
	prevLevel, prevFormatter, prevOut := Logger.GetLevel(), Logger.Formatter, Logger.Out
	defer func() {
		Logger.SetLevel(prevLevel)
		Logger.SetFormatter(prevFormatter)
		Logger.SetOutput(prevOut)
	}()

	require.NoError(t, ConfigureLogger("debug", "json"))
	assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, Logger.Formatter)

	require.NoError(t, ConfigureLogger("", ""))
	assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())

	assert.Error(t, ConfigureLogger("chatty", ""))
	assert.Error(t, ConfigureLogger("", "yaml"))

	var buf bytes.Buffer
	Logger.SetOutput(&buf)
	LogWarn("cache write failed", errors.New("disk full"))
	assert.Contains(t, buf.String(), "cache write failed")
	assert.Contains(t, buf.String(), "disk full")
}
