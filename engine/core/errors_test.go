package core

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructionErrorUnwraps(t *testing.T) {
	err := error(NewConstructionError("output manager", "hdr buffer", ErrUnsupported))
	assert.ErrorIs(t, err, ErrUnsupported)

	var ce *ConstructionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "output manager", ce.Component)
	assert.Equal(t, "output manager: failed to create hdr buffer: unsupported", err.Error())
}

func TestLoadErrorFormatting(t *testing.T) {
	assert.Equal(t, `a.obj:3: "vq": unsupported`, (&LoadError{Path: "a.obj", Line: 3, Token: "vq", Err: ErrUnsupported}).Error())
	assert.Equal(t, "a.obj:3: unsupported", (&LoadError{Path: "a.obj", Line: 3, Err: ErrUnsupported}).Error())
	assert.Equal(t, "a.msh: unexpected EOF", (&LoadError{Path: "a.msh", Err: io.ErrUnexpectedEOF}).Error())
	assert.ErrorIs(t, &LoadError{Path: "a.msh", Err: io.ErrUnexpectedEOF}, io.ErrUnexpectedEOF)
}

func TestMetricsAverage(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.016)
	}
	assert.InDelta(t, 16.0, m.FrameTime(), 1e-9)
	for i := 0; i < 100; i++ {
		m.Update(0.016)
	}
	assert.Greater(t, m.FPS(), 0.0)
}

func TestParseLogLevel(t *testing.T) {
	l, err := ParseLogLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, l)
	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestGameTimeAdvance(t *testing.T) {
	gt := GameTime{}.Advance(0.5).Advance(0.75)
	assert.Equal(t, 0.75, gt.Total)
	assert.Equal(t, 0.25, gt.Delta)
	assert.Equal(t, uint64(2), gt.Frame)
}
