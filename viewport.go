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
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Viewport returns the currently selected sample range.
func (wf *Waveform) Viewport() Viewport {
	return wf.viewport
}

// ResetViewport selects the full record.
func (wf *Waveform) ResetViewport() {
	n := len(wf.time)
	wf.viewport = Viewport{
		TStart:   wf.time[0],
		TEnd:     wf.time[n-1],
		IdxStart: 0,
		IdxEnd:   n - 1,
	}
}

// SetViewport selects the samples with tStart <= time <= tEnd.
// On error the previous viewport is kept.
func (wf *Waveform) SetViewport(tStart, tEnd float64) error {
	if math.IsNaN(tStart) || math.IsNaN(tEnd) {
		return fmt.Errorf("viewport bounds must be numbers: %w", ErrInvalidArgument)
	}
	if tStart > tEnd {
		return fmt.Errorf("viewport start %g is after end %g: %w", tStart, tEnd, ErrInvalidArgument)
	}

	n := len(wf.time)

	// First sample at or after tStart
	idxStart := sort.Search(n, func(i int) bool { return wf.time[i] >= tStart })
	if idxStart == n {
		return fmt.Errorf("no sample at or after t=%g (record ends at %g): %w", tStart, wf.time[n-1], ErrOutOfRange)
	}

	// Last sample at or before tEnd
	idxEnd := sort.Search(n, func(i int) bool { return wf.time[i] > tEnd }) - 1
	if idxEnd < 0 {
		return fmt.Errorf("no sample at or before t=%g (record starts at %g): %w", tEnd, wf.time[0], ErrOutOfRange)
	}

	if idxStart > idxEnd {
		return fmt.Errorf("no sample between t=%g and t=%g: %w", tStart, tEnd, ErrOutOfRange)
	}

	wf.viewport = Viewport{
		TStart:   tStart,
		TEnd:     tEnd,
		IdxStart: idxStart,
		IdxEnd:   idxEnd,
	}

	return nil
}

// Samples returns a copy of the sample matrix. Column 0 is time.
func (wf *Waveform) Samples() *mat.Dense {
	return mat.DenseCopyOf(wf.samples)
}

// Time returns the time axis of the full record.
func (wf *Waveform) Time() []float64 {
	return append([]float64(nil), wf.time...)
}

// Channel returns the samples of channel i (1-based) for the full record.
func (wf *Waveform) Channel(i int) ([]float64, error) {
	if err := wf.checkChannel(i); err != nil {
		return nil, err
	}
	return mat.Col(nil, i, wf.samples), nil
}

// Channels returns all channels of the full record, one row per channel.
func (wf *Waveform) Channels() *mat.Dense {
	return wf.channels(0, len(wf.time)-1)
}

// TimeZoomed returns the time axis restricted to the viewport.
func (wf *Waveform) TimeZoomed() []float64 {
	v := wf.viewport
	return append([]float64(nil), wf.time[v.IdxStart:v.IdxEnd+1]...)
}

// ChannelZoomed returns channel i (1-based) restricted to the viewport.
func (wf *Waveform) ChannelZoomed(i int) ([]float64, error) {
	if err := wf.checkChannel(i); err != nil {
		return nil, err
	}
	v := wf.viewport
	col := wf.samples.ColView(i)
	out := make([]float64, v.Len())
	for j := range out {
		out[j] = col.AtVec(v.IdxStart + j)
	}
	return out, nil
}

// ChannelsZoomed returns all channels restricted to the viewport, one row per channel.
func (wf *Waveform) ChannelsZoomed() *mat.Dense {
	return wf.channels(wf.viewport.IdxStart, wf.viewport.IdxEnd)
}

func (wf *Waveform) channels(from, to int) *mat.Dense {
	_, cols := wf.samples.Dims()
	view := wf.samples.Slice(from, to+1, 1, cols)
	return mat.DenseCopyOf(view.T())
}

func (wf *Waveform) checkChannel(i int) error {
	if i < 1 || i > wf.ChannelCount() {
		return fmt.Errorf("channel %d not in 1..%d: %w", i, wf.ChannelCount(), ErrOutOfRange)
	}
	return nil
}
