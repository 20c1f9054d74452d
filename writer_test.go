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
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenPSG/rthcsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader(recordLength int) rthcsv.Header {
	return rthcsv.Header{
		SerialNumber:          104211,
		FirmwareVersion:       "1.80.3.4",
		AcquisitionTimeStamp:  time.Date(2024, 3, 14, 9, 26, 53, 589793000, time.UTC),
		WaveformType:          "ANALOG",
		AcquisitionMode:       "SAMPLE",
		HorizontalUnit:        "s",
		HorizontalScale:       1e-3,
		HorizontalPosition:    0,
		ReferencePointPercent: 10,
		SampleInterval:        1e-5,
		RecordLength:          recordLength,
		ChannelNames:          []string{"CH1", "CH2"},
		ProbeSettings:         []string{"10:1", "0.1 V/A"},
		VerticalUnits:         []string{"V", "A"},
		VerticalScales:        []float64{2, 0.5},
		VerticalPositions:     []float64{0, -2.5},
		VerticalOffsets:       []float64{0.1, 0},
		HistoryIndex:          []int{0, -1},
		HistoryTimeStamps:     []float64{0, -0.125},
	}
}

func TestWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = f.Close()
	})

	hdr := testHeader(256)

	ew, err := rthcsv.Create(f, hdr)
	require.NoError(t, err)

	for i := 0; i < hdr.RecordLength; i++ {
		tm := float64(i) * hdr.SampleInterval
		err = ew.WriteSample(tm, []float64{float64(i), -float64(i) / 3})
		require.NoError(t, err)
	}

	require.NoError(t, ew.Close())
	require.NoError(t, f.Close())

	// Read the file back
	wf, err := rthcsv.OpenFile(path)
	require.NoError(t, err)

	assert.Equal(t, rthcsv.ModelRTH1004, wf.Model)
	assert.Equal(t, hdr.SerialNumber, wf.SerialNumber)
	assert.Equal(t, hdr.FirmwareVersion, wf.FirmwareVersion)
	assert.True(t, hdr.AcquisitionTimeStamp.Equal(wf.AcquisitionTimeStamp))
	assert.Equal(t, hdr.WaveformType, wf.WaveformType)
	assert.Equal(t, hdr.AcquisitionMode, wf.AcquisitionMode)
	assert.Equal(t, hdr.HorizontalUnit, wf.HorizontalUnit)
	assert.Equal(t, hdr.HorizontalScale, wf.HorizontalScale)
	assert.Equal(t, hdr.HorizontalPosition, wf.HorizontalPosition)
	assert.Equal(t, hdr.ReferencePointPercent, wf.ReferencePointPercent)
	assert.Equal(t, hdr.SampleInterval, wf.SampleInterval)
	assert.Equal(t, hdr.RecordLength, wf.RecordLength)
	assert.Equal(t, hdr.ChannelNames, wf.ChannelNames)
	assert.Equal(t, hdr.ProbeSettings, wf.ProbeSettings)
	assert.Equal(t, hdr.VerticalUnits, wf.VerticalUnits)
	assert.Equal(t, hdr.VerticalScales, wf.VerticalScales)
	assert.Equal(t, hdr.VerticalPositions, wf.VerticalPositions)
	assert.Equal(t, hdr.VerticalOffsets, wf.VerticalOffsets)
	assert.Equal(t, hdr.HistoryIndex, wf.HistoryIndex)
	assert.Equal(t, hdr.HistoryTimeStamps, wf.HistoryTimeStamps)

	// Verify the samples match what was written.
	tm := wf.Time()
	ch1, err := wf.Channel(1)
	require.NoError(t, err)
	ch2, err := wf.Channel(2)
	require.NoError(t, err)
	for i := 0; i < hdr.RecordLength; i++ {
		require.Equal(t, float64(i)*hdr.SampleInterval, tm[i])
		require.Equal(t, float64(i), ch1[i])
		require.Equal(t, -float64(i)/3, ch2[i])
	}
}

func TestWriterErrors(t *testing.T) {
	var buf bytes.Buffer

	hdr := testHeader(2)
	hdr.VerticalUnits = []string{"V"}
	_, err := rthcsv.Create(&buf, hdr)
	require.ErrorIs(t, err, rthcsv.ErrInvalidArgument)

	_, err = rthcsv.Create(&buf, testHeader(0))
	require.ErrorIs(t, err, rthcsv.ErrInvalidArgument)

	ew, err := rthcsv.Create(&buf, testHeader(2))
	require.NoError(t, err)

	require.ErrorIs(t, ew.WriteSample(0, []float64{1}), rthcsv.ErrInvalidArgument)
	require.NoError(t, ew.WriteSample(1, []float64{1, 2}))
	require.ErrorIs(t, ew.WriteSample(0.5, []float64{1, 2}), rthcsv.ErrInvalidArgument)
	require.ErrorIs(t, ew.WriteSample(math.NaN(), []float64{1, 2}), rthcsv.ErrInvalidArgument)

	// One sample short of the record length
	require.ErrorIs(t, ew.Close(), rthcsv.ErrOutOfRange)

	require.NoError(t, ew.WriteSample(2, []float64{1, 2}))
	require.ErrorIs(t, ew.WriteSample(3, []float64{1, 2}), rthcsv.ErrOutOfRange)
	require.NoError(t, ew.Close())
}

func TestWriteViewport(t *testing.T) {
	wf, err := rthcsv.OpenFile(fixture)
	require.NoError(t, err)

	require.NoError(t, wf.SetViewport(-2.7490e-06, -2.7460e-06))

	var buf bytes.Buffer
	require.NoError(t, wf.WriteViewport(&buf))

	sliced, err := rthcsv.Open(&buf)
	require.NoError(t, err)

	assert.Equal(t, 4, sliced.RecordLength)
	assert.Equal(t, wf.SerialNumber, sliced.SerialNumber)
	assert.Equal(t, wf.ProbeSettings, sliced.ProbeSettings)
	assert.True(t, wf.AcquisitionTimeStamp.Equal(sliced.AcquisitionTimeStamp))
	assert.Equal(t, wf.TimeZoomed(), sliced.Time())

	for i := 1; i <= wf.ChannelCount(); i++ {
		want, err := wf.ChannelZoomed(i)
		require.NoError(t, err)
		got, err := sliced.Channel(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
