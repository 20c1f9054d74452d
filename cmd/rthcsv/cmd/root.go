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
	"fmt"
	"log"
	"os"

	"github.com/OpenPSG/rthcsv"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by all commands.
type globalOptions struct {
	verbose     bool
	headerLines int
	model       string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "rthcsv",
		Short: "Inspect and cut R&S RTH1004 oscilloscope CSV exports",
		Long: `Read CSV files saved by the R&S RTH1004 Scope Rider, show the acquisition
settings, cut a time window out of a capture and dump (filtered, derived or
integrated) channel data.

Examples:
  rthcsv info capture.csv                                 # Show acquisition settings
  rthcsv slice capture.csv --start -1e-6 --end 1e-6 -o cut.csv
  rthcsv dump capture.csv --channel 1 --filter 9 --derivative`,
		Version:      "0.1.0",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().IntVar(&opts.headerLines, "header-lines", rthcsv.DefaultHeaderLines,
		"number of metadata lines before the column header row")
	rootCmd.PersistentFlags().StringVar(&opts.model, "model", rthcsv.ModelRTH1004,
		"expected device model")

	rootCmd.AddCommand(newInfoCmd(opts), newSliceCmd(opts), newDumpCmd(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *globalOptions) open(path string) (*rthcsv.Waveform, error) {
	if o.verbose {
		log.Printf("Parsing %s (%d header lines, model %s)", path, o.headerLines, o.model)
	}

	wf, err := rthcsv.OpenFile(path, rthcsv.WithHeaderLines(o.headerLines), rthcsv.WithModel(o.model))
	if err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	if o.verbose {
		log.Printf("Read %d samples on %d channels", wf.RecordLength, wf.ChannelCount())
	}

	return wf, nil
}

// viewportOptions selects a time window with --start and --end.
type viewportOptions struct {
	start float64
	end   float64
}

func (v *viewportOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&v.start, "start", 0, "start of the time window (in horizontal units)")
	cmd.Flags().Float64Var(&v.end, "end", 0, "end of the time window (in horizontal units)")
}

// apply sets the viewport of wf. Without flags the full record is selected.
func (v *viewportOptions) apply(cmd *cobra.Command, wf *rthcsv.Waveform) error {
	startSet := cmd.Flags().Changed("start")
	endSet := cmd.Flags().Changed("end")

	if !startSet && !endSet {
		wf.ResetViewport()
		return nil
	}
	if startSet != endSet {
		return fmt.Errorf("--start and --end must be given together: %w", rthcsv.ErrInvalidArgument)
	}

	if err := wf.SetViewport(v.start, v.end); err != nil {
		return fmt.Errorf("failed to set viewport: %w", err)
	}

	return nil
}
