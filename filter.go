// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package rthcsv

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// EdgeMode selects how FilterAverage extends the input beyond its ends.
type EdgeMode int

const (
	// EdgeNearest repeats the boundary sample (a a a | a b c d | d d d).
	EdgeNearest EdgeMode = iota
	// EdgeReflect reflects about the outer edge (c b a | a b c d | d c b).
	EdgeReflect
	// EdgeMirror reflects about the boundary sample (d c b | a b c d | c b a).
	EdgeMirror
	// EdgeConstant pads with zeros.
	EdgeConstant
	// EdgeWrap wraps around to the opposite end (b c d | a b c d | a b c).
	EdgeWrap
)

var edgeModeNames = map[EdgeMode]string{
	EdgeNearest:  "nearest",
	EdgeReflect:  "reflect",
	EdgeMirror:   "mirror",
	EdgeConstant: "constant",
	EdgeWrap:     "wrap",
}

func (m EdgeMode) String() string {
	if name, ok := edgeModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("EdgeMode(%d)", int(m))
}

// ParseEdgeMode returns the EdgeMode with the given name.
func ParseEdgeMode(name string) (EdgeMode, error) {
	for m, n := range edgeModeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown edge mode %q: %w", name, ErrInvalidArgument)
}

// FilterAverage applies a centered moving average of size samples.
// The output has the same length as x.
func FilterAverage(x []float64, size int, mode EdgeMode) ([]float64, error) {
	if size < 1 {
		return nil, fmt.Errorf("filter size must be positive, got %d: %w", size, ErrInvalidArgument)
	}
	if _, ok := edgeModeNames[mode]; !ok {
		return nil, fmt.Errorf("unknown edge mode %d: %w", int(mode), ErrInvalidArgument)
	}

	n := len(x)
	out := make([]float64, n)
	if size == 1 || n == 0 {
		copy(out, x)
		return out, nil
	}

	// Extend the input by the window overhang on both sides
	before := size / 2
	ext := make([]float64, n+size-1)
	for k := range ext {
		ext[k] = edgeValue(x, k-before, mode)
	}

	for i := range out {
		out[i] = floats.Sum(ext[i:i+size]) / float64(size)
	}

	return out, nil
}

// edgeValue returns x[i], extending x according to mode when i is out of bounds.
func edgeValue(x []float64, i int, mode EdgeMode) float64 {
	n := len(x)
	if i >= 0 && i < n {
		return x[i]
	}

	switch mode {
	case EdgeNearest:
		if i < 0 {
			return x[0]
		}
		return x[n-1]
	case EdgeReflect:
		i = mod(i, 2*n)
		if i >= n {
			i = 2*n - 1 - i
		}
		return x[i]
	case EdgeMirror:
		if n == 1 {
			return x[0]
		}
		period := 2*n - 2
		i = mod(i, period)
		if i >= n {
			i = period - i
		}
		return x[i]
	case EdgeWrap:
		return x[mod(i, n)]
	default:
		return 0
	}
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// TimeDerivative returns the first derivative of x by time, using the
// sample interval of the capture. When filterWindow is larger than one, x
// is smoothed with FilterAverage first. The first difference is repeated
// once so the output has the same length as x.
func (wf *Waveform) TimeDerivative(x []float64, filterWindow int) ([]float64, error) {
	if len(x) < 2 {
		return nil, fmt.Errorf("derivative needs at least 2 samples, got %d: %w", len(x), ErrInvalidArgument)
	}

	if filterWindow > 1 {
		var err error
		x, err = FilterAverage(x, filterWindow, EdgeNearest)
		if err != nil {
			return nil, err
		}
	}

	out := make([]float64, len(x))
	floats.SubTo(out[1:], x[1:], x[:len(x)-1])
	floats.Scale(1/wf.SampleInterval, out)
	out[0] = out[1]

	return out, nil
}

// TimeIntegral returns the running integral of x by time with an
// integration constant of zero.
func (wf *Waveform) TimeIntegral(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	floats.ScaleTo(out, wf.SampleInterval, x)
	return floats.CumSum(out, out)
}
