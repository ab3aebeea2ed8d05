package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesRequestedLevel(t *testing.T) {
	require.Equal(t, logrus.DebugLevel, New(LevelDebug).GetLevel())
	require.Equal(t, logrus.WarnLevel, New(LevelWarning).GetLevel())
	require.Equal(t, logrus.ErrorLevel, New(LevelError).GetLevel())
}

func TestNewDefaultsToInfoForUnknownLevel(t *testing.T) {
	require.Equal(t, logrus.InfoLevel, New(Level("bogus")).GetLevel())
	require.Equal(t, logrus.InfoLevel, New("").GetLevel())
}
