package input

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimJoystick() (*Joystick, *SimAnalog, *SimAnalog, *SimButton) {
	x, y, b := NewSimAnalog(0), NewSimAnalog(0), &SimButton{}
	return &Joystick{X: x, Y: y, Button: b}, x, y, b
}

func TestSampleAxesAreRaw(t *testing.T) {
	j, x, y, _ := newSimJoystick()
	require.NoError(t, j.Configure())

	// Every reading of a 12-bit converter comes through untouched.
	for v := uint16(0); v < 4096; v++ {
		x.Set(v)
		y.Set(4095 - v)
		r := j.Sample()
		if r.AxisX != int16(v) || r.AxisY != int16(4095-v) {
			t.Fatalf("Sample() = (%d, %d), want (%d, %d)", r.AxisX, r.AxisY, v, 4095-v)
		}
	}
}

func TestSampleButtonActiveLow(t *testing.T) {
	j, _, _, b := newSimJoystick()
	require.NoError(t, j.Configure())
	require.True(t, b.PullUpEnabled())

	assert.True(t, b.Get(), "idle pin reads high")
	assert.False(t, j.Sample().ButtonPressed)

	b.Press()
	assert.False(t, b.Get(), "pressed pin reads low")
	assert.True(t, j.Sample().ButtonPressed)

	b.Release()
	assert.False(t, j.Sample().ButtonPressed)
}

func TestButtonFloatsWithoutPullUp(t *testing.T) {
	_, _, _, b := newSimJoystick()
	assert.False(t, b.Get())
}

type failingPin struct{ err error }

func (p failingPin) Get() uint16      { return 0 }
func (p failingPin) Configure() error { return p.err }

func TestConfigureError(t *testing.T) {
	boom := errors.New("adc unavailable")
	j := &Joystick{X: failingPin{err: boom}, Y: NewSimAnalog(0), Button: &SimButton{}}
	assert.ErrorIs(t, j.Configure(), boom)
}
