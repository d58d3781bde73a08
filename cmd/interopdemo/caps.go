// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gogpu/interop/driver"
)

var (
	capsABI     string
	capsMissing bool
)

var capsCmd = &cobra.Command{
	Use:   "caps",
	Short: "Report the driver entry points available on this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := driver.Available()
		if capsABI != "" {
			if !slices.Contains(names, capsABI) {
				return fmt.Errorf("unknown ABI %q, have %s", capsABI, strings.Join(names, ", "))
			}
			names = []string{capsABI}
		}
		return writeCaps(cmd.OutOrStdout(), names, capsMissing)
	},
}

func init() {
	capsCmd.Flags().StringVar(&capsABI, "abi", "", "Only report one ABI (cuda, vulkan)")
	capsCmd.Flags().BoolVar(&capsMissing, "missing", false, "List absent optional entry points")
	rootCmd.AddCommand(capsCmd)
}

// capsRow is one line of the caps report.
type capsRow struct {
	abi     string
	status  string
	present int
	total   int
	catalog string
	missing []string
}

func probe(name string) capsRow {
	row := capsRow{abi: name}
	t, p, err := driver.Load(name)
	if p != nil {
		defer p.Close()
		c := p.Catalog()
		row.total = c.Len()
		row.catalog = fmt.Sprintf("%d mandatory, %d optional", c.Mandatory(), c.Optional())
	}
	if err != nil {
		row.status = "unavailable: " + err.Error()
		return row
	}
	row.status = "ok"
	row.present = t.Present()
	row.missing = t.Missing()
	return row
}

func writeCaps(out io.Writer, names []string, listMissing bool) error {
	rows := make([]capsRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, probe(name))
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ABI\tENTRIES\tCATALOG\tSTATUS")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d/%d\t%s\t%s\n", r.abi, r.present, r.total, r.catalog, r.status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if !listMissing {
		return nil
	}
	for _, r := range rows {
		if len(r.missing) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s: %d optional entry points absent\n", r.abi, len(r.missing))
		for _, m := range r.missing {
			fmt.Fprintf(out, "  %s\n", m)
		}
	}
	return nil
}
