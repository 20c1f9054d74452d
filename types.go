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
	"time"

	"gonum.org/v1/gonum/mat"
)

const (
	// ModelRTH1004 is the device model written by the R&S RTH1004 Scope Rider.
	ModelRTH1004 = "RTH1004"
	// DefaultHeaderLines is the number of metadata lines preceding the column header row.
	DefaultHeaderLines = 20
)

// Header represents the metadata block of an RTH1004 CSV export.
type Header struct {
	Model                 string    // Device model (e.g., RTH1004)
	SerialNumber          int       // Device serial number
	FirmwareVersion       string    // Firmware version, quotes removed
	AcquisitionTimeStamp  time.Time // Time of the acquisition
	WaveformType          string    // Waveform type (e.g., ANALOG)
	AcquisitionMode       string    // Acquisition mode (e.g., PEAK, SAMPLE)
	HorizontalUnit        string    // Unit of the time axis (usually "s")
	HorizontalScale       float64   // Horizontal scale per division
	HorizontalPosition    float64   // Horizontal position
	ReferencePointPercent int       // Trigger reference point in percent of the record
	SampleInterval        float64   // Time between two samples
	RecordLength          int       // Number of samples per channel

	ChannelNames      []string  // Column names of the channels (e.g., CH1)
	ProbeSettings     []string  // Probe setting per channel (e.g., 10:1)
	VerticalUnits     []string  // Physical unit per channel (V or A)
	VerticalScales    []float64 // Vertical scale per channel
	VerticalPositions []float64 // Vertical position per channel
	VerticalOffsets   []float64 // Vertical offset per channel
	HistoryIndex      []int     // History frame index per channel
	HistoryTimeStamps []float64 // History frame time stamp per channel

	// Metadata holds the raw header rows keyed by their first field.
	Metadata map[string][]string
}

// ChannelCount returns the number of recorded channels.
func (h *Header) ChannelCount() int {
	return len(h.ChannelNames)
}

// Viewport selects a contiguous range of samples. Both indices are inclusive.
type Viewport struct {
	TStart   float64
	TEnd     float64
	IdxStart int
	IdxEnd   int
}

// Len returns the number of samples inside the viewport.
func (v Viewport) Len() int {
	return v.IdxEnd - v.IdxStart + 1
}

// Waveform is a parsed RTH1004 capture.
//
// Apart from the viewport a Waveform is read-only. Accessors may be used
// from several goroutines, but SetViewport and ResetViewport must not run
// concurrently with any other method on the same Waveform.
type Waveform struct {
	Header

	samples  *mat.Dense // RecordLength x (1 + ChannelCount), column 0 is time
	time     []float64  // cached copy of column 0, used for viewport searches
	viewport Viewport
}
