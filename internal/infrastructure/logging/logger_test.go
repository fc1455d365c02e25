package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Backends(t *testing.T) {
	for _, backend := range []string{"zap", "zerolog"} {
		t.Run(backend, func(t *testing.T) {
			logger, err := NewLogger(&LoggerConfig{
				FilePath: t.TempDir(),
				Encoding: "json",
				Level:    "error",
				Logger:   backend,
			})
			require.NoError(t, err)

			logger.Debug(Game, Join, "ignored below level", map[ExtraKey]any{RoomID: "R1"})
			logger.Error(Game, Join, "written", nil)
		})
	}
}

func TestNewLogger_Unsupported(t *testing.T) {
	_, err := NewLogger(&LoggerConfig{Logger: "log4go"})
	assert.Error(t, err)
}

func TestPrepareLogInfo(t *testing.T) {
	extra := prepareLogInfo(Game, Stroke, map[ExtraKey]any{RoomID: "R1"})

	assert.Equal(t, Game, extra["Category"])
	assert.Equal(t, Stroke, extra["SubCategory"])
	assert.Len(t, logParamsToZapParams(extra), 6)
	assert.Equal(t, "R1", logParamsToZeroParams(extra)["RoomId"])
}

func TestPrepareLogInfo_DoesNotMutate(t *testing.T) {
	fields := map[ExtraKey]any{RoomID: "R1"}
	_ = prepareLogInfo(Game, Join, fields)
	assert.Len(t, fields, 1)

	params := logParamsToZapParams(prepareLogInfo(Game, Join, fields))
	assert.Equal(t, []any{"Category", Game, "RoomId", "R1", "SubCategory", Join}, params)
}
