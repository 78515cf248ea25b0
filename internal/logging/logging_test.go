package logging_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/helix/internal/logging"
)

func TestNewParsesLevel(t *testing.T) {
	logger := logging.New("debug")
	require.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestNewFallsBackToInfoOnInvalidLevel(t *testing.T) {
	logger := logging.New("not-a-real-level")
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
