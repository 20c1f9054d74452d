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
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Header keys as written by the RTH1004.
const (
	keyModel                = "Model"
	keySerialNumber         = "SerialNumber"
	keyFirmwareVersion      = "Firmware Version"
	keyAcquisitionTimeStamp = "Acquisition Time Stamp"
	keyWaveformType         = "Waveform Type"
	keyAcquisitionMode      = "Acquisition Mode"
	keyHorizontalUnit       = "Horizontal Unit"
	keyHorizontalScale      = "Horizontal Scale"
	keyHorizontalPosition   = "Horizontal Position"
	keyReferencePoint       = "Reference Point"
	keySampleInterval       = "Sample Interval"
	keyRecordLength         = "Record Length"
	keyProbeSetting         = "Probe Setting"
	keyVerticalUnit         = "Vertical Unit"
	keyVerticalScale        = "Vertical Scale"
	keyVerticalPosition     = "Vertical Position"
	keyVerticalOffset       = "Vertical Offset"
	keyHistoryIndex         = "History Index"
	keyHistoryTimeStamp     = "History Time Stamp"

	columnTime = "TIME"
)

// The scope prints nanoseconds, the last three digits are dropped before parsing.
const timeStampExcessDigits = 3

var timeStampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

type options struct {
	headerLines int
	model       string
}

// Option configures how a file is parsed.
type Option func(*options)

// WithHeaderLines sets the number of metadata lines before the column header row.
func WithHeaderLines(n int) Option {
	return func(o *options) {
		o.headerLines = n
	}
}

// WithModel sets the device model the file must have been written by.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// OpenFile parses the RTH1004 CSV file at path.
// If the file cannot be opened the error from os.Open is returned as is.
func OpenFile(path string, opts ...Option) (*Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return open(f, path, opts)
}

// Open parses an RTH1004 CSV export read from r.
func Open(r io.Reader, opts ...Option) (*Waveform, error) {
	return open(r, "", opts)
}

func open(r io.Reader, path string, opts []Option) (*Waveform, error) {
	o := options{
		headerLines: DefaultHeaderLines,
		model:       ModelRTH1004,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.headerLines < 1 {
		return nil, fmt.Errorf("header lines must be positive, got %d: %w", o.headerLines, ErrInvalidArgument)
	}

	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	p := &parser{cr: cr, path: path}

	// Read the metadata block
	fields := &headerFields{
		path:     path,
		metadata: make(map[string][]string),
		lines:    make(map[string]int),
	}
	var columns []string
	for i := 0; i < o.headerLines; i++ {
		rec, line, err := p.next()
		if err == io.EOF {
			return nil, p.errorf(0, "unexpected end of file in header")
		} else if err != nil {
			return nil, err
		}

		key := strings.TrimSpace(rec[0])
		if key == columnTime {
			columns = rec
			break
		}
		if key == "" {
			continue
		}
		fields.metadata[key] = rec[1:]
		fields.lines[key] = line
	}

	if model := fields.str(keyModel); fields.err != nil {
		return nil, fields.err
	} else if model != o.model {
		return nil, &FormatError{Path: path, Line: fields.lines[keyModel], Key: keyModel,
			Err: fmt.Errorf("device model must be %q, got %q", o.model, model)}
	}

	// Locate the column header row
	for columns == nil {
		rec, line, err := p.next()
		if err == io.EOF {
			return nil, p.errorf(0, "missing %s column header row", columnTime)
		} else if err != nil {
			return nil, err
		}

		if isSeparator(rec) {
			continue
		}
		if strings.TrimSpace(rec[0]) != columnTime {
			return nil, p.errorf(line, "expected %s column header row, got %q", columnTime, strings.Join(rec, ";"))
		}
		columns = rec
	}

	wf := &Waveform{}
	wf.Header = Header{
		ChannelNames: trimTrailingEmpty(columns[1:]),
		Metadata:     fields.metadata,
	}
	if len(wf.ChannelNames) == 0 {
		return nil, p.errorf(p.line, "column header row has no channels")
	}
	if err := fields.extract(&wf.Header); err != nil {
		return nil, err
	}

	samples, err := p.readSamples(wf.RecordLength, 1+wf.ChannelCount())
	if err != nil {
		return nil, err
	}
	wf.samples = samples
	wf.time = mat.Col(nil, 0, samples)

	wf.ResetViewport()

	return wf, nil
}

type parser struct {
	cr   *csv.Reader
	path string
	line int // line of the last record read
}

func (p *parser) next() ([]string, int, error) {
	rec, err := p.cr.Read()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, perr.Line, &FormatError{Path: p.path, Line: perr.Line, Err: perr.Err}
		}
		return nil, 0, err
	}
	p.line, _ = p.cr.FieldPos(0)
	return rec, p.line, nil
}

func (p *parser) errorf(line int, format string, args ...any) error {
	return &FormatError{Path: p.path, Line: line, Err: fmt.Errorf(format, args...)}
}

// maxPreallocRows caps the rows allocated up front from the Record Length header.
const maxPreallocRows = 1 << 16

// readSamples reads the data section into a rows x cols matrix.
func (p *parser) readSamples(rows, cols int) (*mat.Dense, error) {
	// The record length comes from the file, only trust it up to a bound
	data := make([]float64, 0, min(rows, maxPreallocRows)*cols)

	n := 0
	prev := 0.0
	for {
		rec, line, err := p.next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		rec = trimTrailingEmpty(rec)
		if len(rec) != cols {
			return nil, p.errorf(line, "expected %d columns, got %d", cols, len(rec))
		}
		if n >= rows {
			return nil, p.errorf(line, "more samples than the record length of %d", rows)
		}

		for i, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, p.errorf(line, "invalid number %q in column %d", field, i+1)
			}
			data = append(data, v)
		}

		t := data[n*cols]
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, p.errorf(line, "invalid time %g", t)
		}
		if n > 0 && t < prev {
			return nil, p.errorf(line, "time %g is before previous sample %g", t, prev)
		}
		prev = t
		n++
	}

	if n != rows {
		return nil, p.errorf(0, "record length is %d but file contains %d samples", rows, n)
	}

	return mat.NewDense(rows, cols, data), nil
}

// headerFields converts raw metadata values, remembering the first error.
type headerFields struct {
	path     string
	metadata map[string][]string
	lines    map[string]int
	err      error
}

func (h *headerFields) fail(key string, format string, args ...any) {
	if h.err == nil {
		h.err = &FormatError{Path: h.path, Line: h.lines[key], Key: key, Err: fmt.Errorf(format, args...)}
	}
}

func (h *headerFields) first(key string) string {
	values, ok := h.metadata[key]
	if !ok {
		h.fail(key, "missing header")
		return ""
	}
	values = trimTrailingEmpty(values)
	if len(values) == 0 {
		h.fail(key, "missing value")
		return ""
	}
	return strings.TrimSpace(values[0])
}

func (h *headerFields) str(key string) string {
	return unquote(h.first(key))
}

func (h *headerFields) integer(key string) int {
	s := h.first(key)
	if h.err != nil {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		h.fail(key, "invalid integer %q", s)
	}
	return v
}

func (h *headerFields) float(key string) float64 {
	s := h.first(key)
	if h.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		h.fail(key, "invalid number %q", s)
	}
	return v
}

func (h *headerFields) percent(key string) int {
	s := h.first(key)
	if h.err != nil {
		return 0
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	v, err := strconv.Atoi(s)
	if err != nil {
		h.fail(key, "invalid percentage %q", s)
	}
	return v
}

func (h *headerFields) timestamp(key string) time.Time {
	s := h.first(key)
	if h.err != nil {
		return time.Time{}
	}
	if len(s) <= timeStampExcessDigits {
		h.fail(key, "invalid time stamp %q", s)
		return time.Time{}
	}
	trimmed := s[:len(s)-timeStampExcessDigits]
	for _, layout := range timeStampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t
		}
	}
	h.fail(key, "invalid time stamp %q", s)
	return time.Time{}
}

// perChannel returns exactly n values for key.
func (h *headerFields) perChannel(key string, n int) []string {
	values, ok := h.metadata[key]
	if !ok {
		h.fail(key, "missing header")
		return nil
	}
	values = trimTrailingEmpty(values)
	if len(values) != n {
		h.fail(key, "expected %d channel values, got %d", n, len(values))
		return nil
	}
	out := make([]string, n)
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func (h *headerFields) strings(key string, n int) []string {
	values := h.perChannel(key, n)
	for i := range values {
		values[i] = unquote(values[i])
	}
	return values
}

func (h *headerFields) floats(key string, n int) []float64 {
	values := h.perChannel(key, n)
	if h.err != nil {
		return nil
	}
	out := make([]float64, n)
	for i, s := range values {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			h.fail(key, "invalid number %q for channel %d", s, i+1)
			return nil
		}
		out[i] = v
	}
	return out
}

func (h *headerFields) ints(key string, n int) []int {
	values := h.perChannel(key, n)
	if h.err != nil {
		return nil
	}
	out := make([]int, n)
	for i, s := range values {
		v, err := strconv.Atoi(s)
		if err != nil {
			h.fail(key, "invalid integer %q for channel %d", s, i+1)
			return nil
		}
		out[i] = v
	}
	return out
}

// extract populates hdr from the raw metadata. hdr.ChannelNames must be set.
func (h *headerFields) extract(hdr *Header) error {
	n := hdr.ChannelCount()

	hdr.Model = h.str(keyModel)
	hdr.SerialNumber = h.integer(keySerialNumber)
	hdr.FirmwareVersion = h.str(keyFirmwareVersion)
	hdr.AcquisitionTimeStamp = h.timestamp(keyAcquisitionTimeStamp)
	hdr.WaveformType = h.str(keyWaveformType)
	hdr.AcquisitionMode = h.str(keyAcquisitionMode)
	hdr.HorizontalUnit = h.str(keyHorizontalUnit)
	hdr.HorizontalScale = h.float(keyHorizontalScale)
	hdr.HorizontalPosition = h.float(keyHorizontalPosition)
	hdr.ReferencePointPercent = h.percent(keyReferencePoint)
	hdr.SampleInterval = h.float(keySampleInterval)
	hdr.RecordLength = h.integer(keyRecordLength)

	hdr.ProbeSettings = h.strings(keyProbeSetting, n)
	hdr.VerticalUnits = h.strings(keyVerticalUnit, n)
	hdr.VerticalScales = h.floats(keyVerticalScale, n)
	hdr.VerticalPositions = h.floats(keyVerticalPosition, n)
	hdr.VerticalOffsets = h.floats(keyVerticalOffset, n)
	hdr.HistoryIndex = h.ints(keyHistoryIndex, n)
	hdr.HistoryTimeStamps = h.floats(keyHistoryTimeStamp, n)

	if h.err != nil {
		return h.err
	}

	if hdr.RecordLength < 1 {
		h.fail(keyRecordLength, "record length must be positive, got %d", hdr.RecordLength)
	} else if !(hdr.SampleInterval > 0) || math.IsInf(hdr.SampleInterval, 0) {
		h.fail(keySampleInterval, "sample interval must be positive, got %g", hdr.SampleInterval)
	}

	return h.err
}

func isSeparator(rec []string) bool {
	return len(trimTrailingEmpty(rec)) == 0
}

// trimTrailingEmpty drops trailing blank fields, as in "Waveform Type;ANALOG;;;".
func trimTrailingEmpty(fields []string) []string {
	n := len(fields)
	for n > 0 && strings.TrimSpace(fields[n-1]) == "" {
		n--
	}
	return fields[:n]
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `'"`)
}
