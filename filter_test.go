// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package rthcsv_test

import (
	"math"
	"testing"

	"github.com/OpenPSG/rthcsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterAverageIdentity(t *testing.T) {
	x := []float64{0.3, -1.7, 2.9, 1e-9, 42}

	for _, mode := range []rthcsv.EdgeMode{rthcsv.EdgeNearest, rthcsv.EdgeReflect, rthcsv.EdgeMirror, rthcsv.EdgeConstant, rthcsv.EdgeWrap} {
		out, err := rthcsv.FilterAverage(x, 1, mode)
		require.NoError(t, err)
		assert.Equal(t, x, out)
	}
}

func TestFilterAverage(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		size int
		mode rthcsv.EdgeMode
		want []float64
	}{
		{"Nearest", []float64{1, 2, 3, 4, 5}, 3, rthcsv.EdgeNearest, []float64{4.0 / 3, 2, 3, 4, 14.0 / 3}},
		{"Reflect", []float64{1, 2, 3}, 3, rthcsv.EdgeReflect, []float64{4.0 / 3, 2, 8.0 / 3}},
		{"Mirror", []float64{1, 2, 3}, 3, rthcsv.EdgeMirror, []float64{5.0 / 3, 2, 7.0 / 3}},
		{"Constant", []float64{1, 2, 3}, 3, rthcsv.EdgeConstant, []float64{1, 2, 5.0 / 3}},
		{"Wrap", []float64{1, 2, 3}, 3, rthcsv.EdgeWrap, []float64{2, 2, 2}},
		{"EvenSize", []float64{1, 2, 3}, 2, rthcsv.EdgeNearest, []float64{1, 1.5, 2.5}},
		{"WindowLargerThanInput", []float64{1, 2}, 7, rthcsv.EdgeReflect, []float64{11.0 / 7, 10.0 / 7}},
		{"Empty", []float64{}, 3, rthcsv.EdgeNearest, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := rthcsv.FilterAverage(tt.x, tt.size, tt.mode)
			require.NoError(t, err)
			require.Len(t, out, len(tt.x))
			assert.InDeltaSlice(t, tt.want, out, 1e-12)
		})
	}
}

func TestFilterAverageInvalid(t *testing.T) {
	_, err := rthcsv.FilterAverage([]float64{1, 2, 3}, 0, rthcsv.EdgeNearest)
	require.ErrorIs(t, err, rthcsv.ErrInvalidArgument)

	_, err = rthcsv.FilterAverage([]float64{1, 2, 3}, 3, rthcsv.EdgeMode(99))
	require.ErrorIs(t, err, rthcsv.ErrInvalidArgument)
}

func TestParseEdgeMode(t *testing.T) {
	for _, mode := range []rthcsv.EdgeMode{rthcsv.EdgeNearest, rthcsv.EdgeReflect, rthcsv.EdgeMirror, rthcsv.EdgeConstant, rthcsv.EdgeWrap} {
		parsed, err := rthcsv.ParseEdgeMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}

	_, err := rthcsv.ParseEdgeMode("zero")
	require.ErrorIs(t, err, rthcsv.ErrInvalidArgument)
}

func TestTimeDerivative(t *testing.T) {
	wf := &rthcsv.Waveform{Header: rthcsv.Header{SampleInterval: 8e-10}}

	// A ramp of 3 units per second
	x := make([]float64, 50)
	for i := range x {
		x[i] = 3 * float64(i) * wf.SampleInterval
	}

	d, err := wf.TimeDerivative(x, 1)
	require.NoError(t, err)
	require.Len(t, d, len(x))
	for i := range d {
		assert.InDelta(t, 3, d[i], 1e-6)
	}

	// Smoothing keeps the slope away from the edges
	d, err = wf.TimeDerivative(x, 5)
	require.NoError(t, err)
	require.Len(t, d, len(x))
	for i := 3; i < len(d)-2; i++ {
		assert.InDelta(t, 3, d[i], 1e-6)
	}

	_, err = wf.TimeDerivative([]float64{1}, 1)
	require.ErrorIs(t, err, rthcsv.ErrInvalidArgument)
}

func TestTimeDerivativeRepeatsFirstValue(t *testing.T) {
	wf := &rthcsv.Waveform{Header: rthcsv.Header{SampleInterval: 0.5}}

	d, err := wf.TimeDerivative([]float64{0, 1, 3, 6}, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 4, 6}, d)
}

func TestTimeIntegral(t *testing.T) {
	wf := &rthcsv.Waveform{Header: rthcsv.Header{SampleInterval: 0.25}}

	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1}, wf.TimeIntegral([]float64{1, 1, 1, 1}))
	assert.Equal(t, []float64{0.5, 0.25, 1}, wf.TimeIntegral([]float64{2, -1, 3}))
	assert.Empty(t, wf.TimeIntegral(nil))
}

func TestDerivativeIntegralInverse(t *testing.T) {
	wf := &rthcsv.Waveform{Header: rthcsv.Header{SampleInterval: 1e-3}}

	x := make([]float64, 1000)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * float64(i) * wf.SampleInterval)
	}

	d, err := wf.TimeDerivative(x, 1)
	require.NoError(t, err)

	integral := wf.TimeIntegral(d)
	require.Len(t, integral, len(x))
	for i := range x {
		assert.InDelta(t, x[i]-x[0], integral[i], 1e-2)
	}
}
