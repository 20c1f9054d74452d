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
	"encoding/csv"
	"fmt"
	"log"
	"strconv"

	"github.com/OpenPSG/rthcsv"
	"github.com/spf13/cobra"
)

func newDumpCmd(opts *globalOptions) *cobra.Command {
	var (
		vp         viewportOptions
		channels   []int
		filterSize int
		edge       string
		derivative bool
		integral   bool
	)

	dumpCmd := &cobra.Command{
		Use:   "dump <csv-file>",
		Short: "Print channel data of a capture",
		Long: `Print the time axis and the selected channels of a capture as ';' separated
values, optionally restricted to a time window. Channels can be smoothed with
a moving average and replaced by their time derivative or time integral.

Examples:
  rthcsv dump capture.csv
  rthcsv dump capture.csv --channel 1 --channel 3 --start 0 --end 1e-6
  rthcsv dump capture.csv -c 4 --filter 15 --edge reflect --derivative`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := rthcsv.ParseEdgeMode(edge)
			if err != nil {
				return err
			}

			wf, err := opts.open(args[0])
			if err != nil {
				return err
			}

			if err := vp.apply(cmd, wf); err != nil {
				return err
			}

			if len(channels) == 0 {
				for i := 1; i <= wf.ChannelCount(); i++ {
					channels = append(channels, i)
				}
			}

			columns := [][]float64{wf.TimeZoomed()}
			names := []string{"TIME"}
			for _, ch := range channels {
				samples, err := wf.ChannelZoomed(ch)
				if err != nil {
					return err
				}

				if filterSize != 1 {
					if opts.verbose {
						log.Printf("Filtering %s with a %d sample moving average (%s)", wf.ChannelNames[ch-1], filterSize, mode)
					}
					samples, err = rthcsv.FilterAverage(samples, filterSize, mode)
					if err != nil {
						return err
					}
				}

				switch {
				case derivative:
					samples, err = wf.TimeDerivative(samples, 1)
					if err != nil {
						return err
					}
				case integral:
					samples = wf.TimeIntegral(samples)
				}

				columns = append(columns, samples)
				names = append(names, wf.ChannelNames[ch-1])
			}

			w := csv.NewWriter(cmd.OutOrStdout())
			w.Comma = ';'

			if err := w.Write(names); err != nil {
				return err
			}

			record := make([]string, len(columns))
			for i := range columns[0] {
				for j, col := range columns {
					record[j] = strconv.FormatFloat(col[i], 'g', -1, 64)
				}
				if err := w.Write(record); err != nil {
					return err
				}
			}

			w.Flush()
			if err := w.Error(); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}

			return nil
		},
	}

	vp.addFlags(dumpCmd)
	dumpCmd.Flags().IntSliceVarP(&channels, "channel", "c", nil, "channel to print, 1-based (default all)")
	dumpCmd.Flags().IntVar(&filterSize, "filter", 1, "moving average window in samples")
	dumpCmd.Flags().StringVar(&edge, "edge", rthcsv.EdgeNearest.String(),
		"moving average edge mode: nearest, reflect, mirror, constant or wrap")
	dumpCmd.Flags().BoolVar(&derivative, "derivative", false, "print the time derivative")
	dumpCmd.Flags().BoolVar(&integral, "integral", false, "print the time integral")
	dumpCmd.MarkFlagsMutuallyExclusive("derivative", "integral")

	return dumpCmd
}
