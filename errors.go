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
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat is matched by every *FormatError.
	ErrFormat = errors.New("invalid file format")
	// ErrOutOfRange is returned when a request selects no samples.
	ErrOutOfRange = errors.New("out of range")
	// ErrInvalidArgument is returned for malformed caller input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// FormatError reports a malformed or unexpected RTH1004 CSV file.
type FormatError struct {
	Path string // File path, empty when parsing from a reader
	Line int    // 1-based line number, 0 if not applicable
	Key  string // Offending header key, if any
	Err  error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, "header %q: ", e.Key)
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(ErrFormat.Error())
	}
	return b.String()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFormat) true for any *FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}
