// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/OpenPSG/rthcsv"
	"github.com/spf13/cobra"
)

// FileInfo is the JSON representation of a capture's settings.
type FileInfo struct {
	Model                 string        `json:"model"`
	SerialNumber          int           `json:"serial_number"`
	FirmwareVersion       string        `json:"firmware_version"`
	AcquisitionTimeStamp  time.Time     `json:"acquisition_time_stamp"`
	WaveformType          string        `json:"waveform_type"`
	AcquisitionMode       string        `json:"acquisition_mode"`
	HorizontalUnit        string        `json:"horizontal_unit"`
	HorizontalScale       float64       `json:"horizontal_scale"`
	HorizontalPosition    float64       `json:"horizontal_position"`
	ReferencePointPercent int           `json:"reference_point_percent"`
	SampleInterval        float64       `json:"sample_interval"`
	RecordLength          int           `json:"record_length"`
	TimeStart             float64       `json:"time_start"`
	TimeEnd               float64       `json:"time_end"`
	Channels              []ChannelInfo `json:"channels"`
}

// ChannelInfo describes the settings of one channel.
type ChannelInfo struct {
	Name             string  `json:"name"`
	ProbeSetting     string  `json:"probe_setting"`
	Unit             string  `json:"unit"`
	Scale            float64 `json:"scale"`
	Position         float64 `json:"position"`
	Offset           float64 `json:"offset"`
	HistoryIndex     int     `json:"history_index"`
	HistoryTimeStamp float64 `json:"history_time_stamp"`
}

func newInfoCmd(opts *globalOptions) *cobra.Command {
	var outputJSON bool

	infoCmd := &cobra.Command{
		Use:   "info <csv-file>",
		Short: "Show the acquisition settings of a capture",
		Long: `Show the device, timebase and per channel settings stored in the header
of an RTH1004 CSV export.

Examples:
  rthcsv info capture.csv
  rthcsv info --json capture.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := opts.open(args[0])
			if err != nil {
				return err
			}

			info := newFileInfo(wf)
			out := cmd.OutOrStdout()

			if outputJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			fmt.Fprintf(out, "Model:            %s (serial %d, firmware %s)\n", info.Model, info.SerialNumber, info.FirmwareVersion)
			fmt.Fprintf(out, "Acquired:         %s\n", info.AcquisitionTimeStamp.Format(time.RFC3339Nano))
			fmt.Fprintf(out, "Waveform:         %s, %s\n", info.WaveformType, info.AcquisitionMode)
			fmt.Fprintf(out, "Horizontal scale: %g %s/div, position %g %s, reference %d %%\n",
				info.HorizontalScale, info.HorizontalUnit, info.HorizontalPosition, info.HorizontalUnit, info.ReferencePointPercent)
			fmt.Fprintf(out, "Samples:          %d every %g %s (%g to %g %s)\n",
				info.RecordLength, info.SampleInterval, info.HorizontalUnit, info.TimeStart, info.TimeEnd, info.HorizontalUnit)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Channels: %d\n", len(info.Channels))
			for _, ch := range info.Channels {
				fmt.Fprintf(out, "  %-6s probe %-8s %g %s/div, position %g, offset %g",
					ch.Name, ch.ProbeSetting, ch.Scale, ch.Unit, ch.Position, ch.Offset)
				if ch.HistoryIndex != 0 || ch.HistoryTimeStamp != 0 {
					fmt.Fprintf(out, ", history %d @ %g", ch.HistoryIndex, ch.HistoryTimeStamp)
				}
				fmt.Fprintln(out)
			}

			return nil
		},
	}

	infoCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")

	return infoCmd
}

func newFileInfo(wf *rthcsv.Waveform) FileInfo {
	tm := wf.Time()

	info := FileInfo{
		Model:                 wf.Model,
		SerialNumber:          wf.SerialNumber,
		FirmwareVersion:       wf.FirmwareVersion,
		AcquisitionTimeStamp:  wf.AcquisitionTimeStamp,
		WaveformType:          wf.WaveformType,
		AcquisitionMode:       wf.AcquisitionMode,
		HorizontalUnit:        wf.HorizontalUnit,
		HorizontalScale:       wf.HorizontalScale,
		HorizontalPosition:    wf.HorizontalPosition,
		ReferencePointPercent: wf.ReferencePointPercent,
		SampleInterval:        wf.SampleInterval,
		RecordLength:          wf.RecordLength,
		TimeStart:             tm[0],
		TimeEnd:               tm[len(tm)-1],
		Channels:              make([]ChannelInfo, wf.ChannelCount()),
	}

	for i := range info.Channels {
		info.Channels[i] = ChannelInfo{
			Name:             wf.ChannelNames[i],
			ProbeSetting:     wf.ProbeSettings[i],
			Unit:             wf.VerticalUnits[i],
			Scale:            wf.VerticalScales[i],
			Position:         wf.VerticalPositions[i],
			Offset:           wf.VerticalOffsets[i],
			HistoryIndex:     wf.HistoryIndex[i],
			HistoryTimeStamp: wf.HistoryTimeStamps[i],
		}
	}

	return info
}
