package renderer

import (
	"testing"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/headless"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOutputManager(t *testing.T, aa metadata.AntiAliasing) (*OutputManager, *headless.Recorder) {
	t.Helper()
	device := headless.NewRecorder()
	om, err := NewOutputManager(device, metadata.DisplayConfiguration{Width: 100, Height: 50, AntiAliasing: aa}, math.DepthInverted)
	require.NoError(t, err)
	device.Reset()
	return om, device
}

func TestOutputManagerTargets(t *testing.T) {
	om, device := newTestOutputManager(t, metadata.AntiAliasingSSAA3x)

	for target := Target(0); target < TargetCount; target++ {
		res, ok := device.Resource(om.Handle(target))
		require.True(t, ok, target.String())
		assert.Equal(t, target.String(), res.Name)
		assert.Equal(t, uint32(1), res.Texture.SampleCount)
	}

	hdr, _ := device.Resource(om.Handle(TargetHDR))
	assert.Equal(t, uint32(300), hdr.Texture.Width)
	assert.Equal(t, uint32(150), hdr.Texture.Height)
	assert.True(t, hdr.Texture.Bind.Has(metadata.BindUnorderedAccess))

	ldr, _ := device.Resource(om.Handle(TargetLDR))
	assert.Equal(t, uint32(100), ldr.Texture.Width)
	assert.True(t, ldr.Texture.Bind.Has(metadata.BindRenderTarget))
	assert.True(t, ldr.Texture.Bind.Has(metadata.BindUnorderedAccess))

	assert.Equal(t, "unknown", TargetCount.String())
}

func TestOutputManagerMultisampledTargets(t *testing.T) {
	om, device := newTestOutputManager(t, metadata.AntiAliasingMSAA8x)

	for _, target := range []Target{TargetHDR, TargetBaseColor, TargetMaterial, TargetNormal, TargetDepth} {
		res, _ := device.Resource(om.Handle(target))
		assert.Equal(t, uint32(8), res.Texture.SampleCount, target.String())
		assert.Equal(t, uint32(100), res.Texture.Width, target.String())
	}
	hdr, _ := device.Resource(om.Handle(TargetHDR))
	assert.False(t, hdr.Texture.Bind.Has(metadata.BindUnorderedAccess))

	pp, _ := device.Resource(om.Handle(TargetPostProcessingHDR0))
	assert.Equal(t, uint32(1), pp.Texture.SampleCount)

	// the deferred output is a render target instead of an unordered access view
	device.Reset()
	om.BindBeginDeferred()
	cmds := device.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, headless.OpBindRenderTargets, cmds[1].Op)
	assert.Equal(t, []metadata.Handle{om.Handle(TargetHDR), metadata.InvalidHandle}, cmds[1].Handles)
}

func TestOutputManagerClearsWithConvention(t *testing.T) {
	om, device := newTestOutputManager(t, metadata.AntiAliasingNone)
	om.BindBegin()

	assert.Equal(t, 5, device.Count(headless.OpClearRenderTarget))
	cmds := device.Commands()
	last := cmds[len(cmds)-1]
	assert.Equal(t, headless.OpClearDepthStencil, last.Op)
	assert.Equal(t, om.Handle(TargetDepth), last.Handles[0])
	assert.Equal(t, float32(0), last.Value)
}

func TestOutputManagerPingPong(t *testing.T) {
	om, device := newTestOutputManager(t, metadata.AntiAliasingNone)

	om.BindBeginViewport()
	assert.Equal(t, TargetPostProcessingHDR0, om.CurrentOutput())

	om.BindBeginPostProcessing()
	assert.Equal(t, 3, device.Count(headless.OpCopyResource))
	copies := device.Commands()[2:5]
	assert.Equal(t, []metadata.Handle{om.Handle(TargetPostProcessingHDR0), om.Handle(TargetHDR)}, copies[0].Handles)

	hdr0, hdr1 := om.Handle(TargetPostProcessingHDR0), om.Handle(TargetPostProcessingHDR1)
	for i, want := range []struct {
		src, dst metadata.Handle
		output   Target
	}{
		{hdr0, hdr1, TargetPostProcessingHDR1},
		{hdr1, hdr0, TargetPostProcessingHDR0},
		{hdr0, hdr1, TargetPostProcessingHDR1},
	} {
		device.Reset()
		om.BindPingPong()
		cmds := device.Commands()
		require.Len(t, cmds, 4)
		assert.Equal(t, want.src, cmds[2].Handles[0], "swap %d", i)
		assert.Equal(t, want.dst, cmds[3].Handles[0], "swap %d", i)
		assert.Equal(t, want.output, om.CurrentOutput(), "swap %d", i)
		assert.Equal(t, i+1, om.PingPongCount())
	}

	// a second post-processing phase of the same viewport does not copy again
	device.Reset()
	om.BindBeginPostProcessing()
	assert.Equal(t, 0, device.Count(headless.OpCopyResource))

	om.BindBeginViewport()
	assert.Equal(t, 0, om.PingPongCount())
	assert.Equal(t, TargetPostProcessingHDR0, om.CurrentOutput())
}

func TestOutputManagerResolveSkipsCopy(t *testing.T) {
	om, device := newTestOutputManager(t, metadata.AntiAliasingMSAA2x)

	om.BindBeginViewport()
	om.BindBeginResolve()
	om.BindEndResolve()
	om.BindBeginPostProcessing()
	assert.Equal(t, 0, device.Count(headless.OpCopyResource))
	assert.Equal(t, TargetPostProcessingHDR0, om.CurrentOutput())
}

func TestOutputManagerResize(t *testing.T) {
	om, device := newTestOutputManager(t, metadata.AntiAliasingNone)
	old := om.Handle(TargetLDR)

	require.NoError(t, om.OnResize(40, 30))
	assert.NotEqual(t, old, om.Handle(TargetLDR))
	res, _ := device.Resource(old)
	assert.True(t, res.Released)
	assert.Equal(t, uint32(40), om.Display().Width)

	ldr, _ := device.Resource(om.Handle(TargetLDR))
	assert.Equal(t, uint32(30), ldr.Texture.Height)
}

func TestOutputManagerReleasesOnFailure(t *testing.T) {
	device := headless.NewRecorder()
	device.FailCreate("pp_depth", core.ErrUnsupported)

	om, err := NewOutputManager(device, metadata.DisplayConfiguration{Width: 8, Height: 8}, math.DepthStandard)
	assert.Nil(t, om)
	assert.ErrorIs(t, err, core.ErrUnsupported)
	assert.Equal(t, 1, device.LiveResources())
}
