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

	"github.com/spf13/cobra"
)

func newSliceCmd(opts *globalOptions) *cobra.Command {
	var (
		vp     viewportOptions
		output string
	)

	sliceCmd := &cobra.Command{
		Use:   "slice <csv-file>",
		Short: "Cut a time window out of a capture",
		Long: `Write the samples between --start and --end as a new RTH1004 CSV file.
The header of the source capture is kept, the record length is updated.
Without --start and --end the full record is copied.

Examples:
  rthcsv slice capture.csv --start -1e-6 --end 1e-6 -o cut.csv
  rthcsv slice capture.csv --start 0 --end 2.5e-7 > cut.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := opts.open(args[0])
			if err != nil {
				return err
			}

			if err := vp.apply(cmd, wf); err != nil {
				return err
			}

			v := wf.Viewport()
			if opts.verbose {
				log.Printf("Writing samples %d to %d", v.IdxStart, v.IdxEnd)
			}

			if output == "" {
				return wf.WriteViewport(cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()

			if err := wf.WriteViewport(f); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			return f.Close()
		},
	}

	vp.addFlags(sliceCmd)
	sliceCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return sliceCmd
}
