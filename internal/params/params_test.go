package params

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCoversConfigurationSurface(t *testing.T) {
	names := []string{
		HorizontalResolution, VerticalResolution, ViewingDistance, HorizontalScreenSize,
		TextureSize, NoiseImpulses, NoiseSpatialFrequency, NoiseBandwidth, NoiseTimeSpeedUp,
		NoiseTimeSpeedUpSigma, NoiseContrast, Azimuth, Elevation, Sigma, Orientation,
		SpatialFrequency, PhaseOffset, Contrast, Transparency,
	}
	s := Schema()
	require.Len(t, s, len(names))
	for i, n := range names {
		assert.Equal(t, n, s[i].Name)
	}
}

func TestDefaultsValidate(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	assert.NoError(t, p.Validate())
	assert.Equal(t, 1980, p.Int(HorizontalResolution))
	assert.Equal(t, 0.11, p.Float(SpatialFrequency))
}

func TestContrastRange(t *testing.T) {
	cases := []struct {
		contrast float64
		valid    bool
	}{
		{0, false},
		{1, false},
		{-0.2, false},
		{1.5, false},
		{0.5, true},
		{0.001, true},
	}
	for _, tc := range cases {
		p, err := New(map[string]float64{Contrast: tc.contrast})
		require.NoError(t, err)
		err = p.Validate()
		if tc.valid {
			assert.NoError(t, err, "contrast %v", tc.contrast)
		} else {
			assert.ErrorIs(t, err, ErrInvalid, "contrast %v", tc.contrast)
		}
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	p, err := New(map[string]float64{
		ViewingDistance: 0,
		NoiseBandwidth:  -1,
		NoiseImpulses:   0,
	})
	require.NoError(t, err)

	err = p.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), ViewingDistance)
	assert.Contains(t, err.Error(), NoiseBandwidth)
	assert.Contains(t, err.Error(), NoiseImpulses)
}

func TestUnknownParameter(t *testing.T) {
	_, err := New(map[string]float64{"dotDensity": 3})
	assert.ErrorIs(t, err, ErrInvalid)

	p, err := New(nil)
	require.NoError(t, err)
	assert.ErrorIs(t, p.Bind("dotDensity", Fixed(1)), ErrInvalid)
}

func TestBoundParametersAreVariables(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)

	for _, s := range Schema() {
		_, isVar := p.Variable(s.Name)
		assert.Equal(t, s.Bound, isVar, s.Name)
	}

	v, ok := p.Variable(Transparency)
	require.True(t, ok)
	v.Set(0.25)
	assert.Equal(t, 0.25, p.Float(Transparency))
}

func TestBindSharesHostVariable(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)

	host := NewVariable(0.1)
	require.NoError(t, p.Bind(NoiseTimeSpeedUp, host))
	host.Set(2)
	assert.Equal(t, 2.0, p.Float(NoiseTimeSpeedUp))
}

func TestVariableConcurrentAdd(t *testing.T) {
	v := NewVariable(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				v.Add(0.5)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 4000.0, v.Float())
}

func TestDefaultString(t *testing.T) {
	s, ok := Lookup(HorizontalResolution)
	require.True(t, ok)
	assert.Equal(t, "1980", s.DefaultString())

	s, ok = Lookup(NoiseTimeSpeedUp)
	require.True(t, ok)
	assert.Equal(t, "0.95", s.DefaultString())
	assert.Equal(t, "float", s.Kind.String())
}
