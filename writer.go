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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

const timeStampLayout = "2006-01-02 15:04:05.000000000"

// Writer writes RTH1004 CSV files.
type Writer struct {
	cw      *csv.Writer
	hdr     *Header
	record  []string
	samples int // Number of samples written so far.
	last    float64
}

// Create writes the header block for hdr to w and returns a writer for the samples.
// Exactly hdr.RecordLength samples must be written before Close.
func Create(w io.Writer, hdr Header) (*Writer, error) {
	if hdr.Model == "" {
		hdr.Model = ModelRTH1004
	}
	if err := validateHeader(&hdr); err != nil {
		return nil, err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cw.UseCRLF = true

	ew := &Writer{
		cw:     cw,
		hdr:    &hdr,
		record: make([]string, 1+hdr.ChannelCount()),
	}

	if err := ew.writeHeader(); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	return ew, nil
}

// WriteSample writes one sample row: the time followed by one value per channel.
func (ew *Writer) WriteSample(t float64, values []float64) error {
	if len(values) != ew.hdr.ChannelCount() {
		return fmt.Errorf("expected %d channel values, got %d: %w", ew.hdr.ChannelCount(), len(values), ErrInvalidArgument)
	}
	if ew.samples >= ew.hdr.RecordLength {
		return fmt.Errorf("record length of %d samples exceeded: %w", ew.hdr.RecordLength, ErrOutOfRange)
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("invalid time %g: %w", t, ErrInvalidArgument)
	}
	if ew.samples > 0 && t < ew.last {
		return fmt.Errorf("time %g is before previous sample %g: %w", t, ew.last, ErrInvalidArgument)
	}

	ew.record[0] = formatFloat(t)
	for i, v := range values {
		ew.record[i+1] = formatFloat(v)
	}
	if err := ew.cw.Write(ew.record); err != nil {
		return err
	}

	ew.last = t
	ew.samples++

	return nil
}

// Close flushes buffered rows and checks that the record is complete.
func (ew *Writer) Close() error {
	ew.cw.Flush()
	if err := ew.cw.Error(); err != nil {
		return err
	}

	if ew.samples != ew.hdr.RecordLength {
		return fmt.Errorf("wrote %d of %d samples: %w", ew.samples, ew.hdr.RecordLength, ErrOutOfRange)
	}

	return nil
}

func (ew *Writer) writeHeader() error {
	hdr := ew.hdr
	n := hdr.ChannelCount()

	timeStamps := make([]string, n)
	for i := range timeStamps {
		timeStamps[i] = hdr.AcquisitionTimeStamp.Format(timeStampLayout)
	}

	rows := [][]string{
		ew.scalar(keyModel, hdr.Model),
		ew.scalar(keySerialNumber, strconv.Itoa(hdr.SerialNumber)),
		ew.scalar(keyFirmwareVersion, quote(hdr.FirmwareVersion)),
		ew.perChannel(keyAcquisitionTimeStamp, timeStamps),
		ew.scalar(keyWaveformType, hdr.WaveformType),
		ew.scalar(keyAcquisitionMode, hdr.AcquisitionMode),
		ew.scalar(keyHorizontalUnit, hdr.HorizontalUnit),
		ew.scalar(keyHorizontalScale, formatFloat(hdr.HorizontalScale)),
		ew.scalar(keyHorizontalPosition, formatFloat(hdr.HorizontalPosition)),
		ew.scalar(keyReferencePoint, strconv.Itoa(hdr.ReferencePointPercent)+" %"),
		ew.scalar(keySampleInterval, formatFloat(hdr.SampleInterval)),
		ew.scalar(keyRecordLength, strconv.Itoa(hdr.RecordLength)),
		ew.perChannel(keyProbeSetting, mapSlice(hdr.ProbeSettings, quote)),
		ew.perChannel(keyVerticalUnit, hdr.VerticalUnits),
		ew.perChannel(keyVerticalScale, mapSlice(hdr.VerticalScales, formatFloat)),
		ew.perChannel(keyVerticalPosition, mapSlice(hdr.VerticalPositions, formatFloat)),
		ew.perChannel(keyVerticalOffset, mapSlice(hdr.VerticalOffsets, formatFloat)),
		ew.perChannel(keyHistoryIndex, mapSlice(hdr.HistoryIndex, strconv.Itoa)),
		ew.perChannel(keyHistoryTimeStamp, mapSlice(hdr.HistoryTimeStamps, func(v float64) string {
			return strconv.FormatFloat(v, 'f', 12, 64)
		})),
		make([]string, n+1), // separator
		append([]string{columnTime}, hdr.ChannelNames...),
	}

	return ew.cw.WriteAll(rows)
}

// scalar pads a single value with empty fields, one column per channel.
func (ew *Writer) scalar(key, value string) []string {
	row := make([]string, ew.hdr.ChannelCount()+1)
	row[0] = key
	row[1] = value
	return row
}

func (ew *Writer) perChannel(key string, values []string) []string {
	return append([]string{key}, values...)
}

// WriteViewport writes the samples inside the current viewport as a new RTH1004 CSV file.
func (wf *Waveform) WriteViewport(w io.Writer) error {
	v := wf.viewport

	hdr := wf.Header
	hdr.RecordLength = v.Len()
	hdr.Metadata = nil

	ew, err := Create(w, hdr)
	if err != nil {
		return err
	}

	_, cols := wf.samples.Dims()
	values := make([]float64, cols-1)
	for i := v.IdxStart; i <= v.IdxEnd; i++ {
		for j := range values {
			values[j] = wf.samples.At(i, j+1)
		}
		if err := ew.WriteSample(wf.time[i], values); err != nil {
			return err
		}
	}

	return ew.Close()
}

func validateHeader(hdr *Header) error {
	n := hdr.ChannelCount()
	if n == 0 {
		return fmt.Errorf("header has no channels: %w", ErrInvalidArgument)
	}
	if hdr.RecordLength < 1 {
		return fmt.Errorf("record length must be positive, got %d: %w", hdr.RecordLength, ErrInvalidArgument)
	}

	lengths := map[string]int{
		keyProbeSetting:     len(hdr.ProbeSettings),
		keyVerticalUnit:     len(hdr.VerticalUnits),
		keyVerticalScale:    len(hdr.VerticalScales),
		keyVerticalPosition: len(hdr.VerticalPositions),
		keyVerticalOffset:   len(hdr.VerticalOffsets),
		keyHistoryIndex:     len(hdr.HistoryIndex),
		keyHistoryTimeStamp: len(hdr.HistoryTimeStamps),
	}
	for key, l := range lengths {
		if l != n {
			return fmt.Errorf("%s has %d values for %d channels: %w", key, l, n, ErrInvalidArgument)
		}
	}

	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func quote(s string) string {
	return "'" + s + "'"
}

func mapSlice[T any](values []T, f func(T) string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = f(v)
	}
	return out
}
