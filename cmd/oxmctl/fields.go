/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type fieldRow struct {
	Code       uint8  `yaml:"code"`
	Name       string `yaml:"name"`
	Length     int    `yaml:"length"`
	Bits       int    `yaml:"bits"`
	Maskable   bool   `yaml:"maskable"`
	MinVersion string `yaml:"min_version"`
	Shape      string `yaml:"shape"`
}

func newFieldsCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the basic match fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := []fieldRow{}
			for _, v := range opts.registry().Descriptors() {
				rows = append(rows, fieldRow{
					Code:       uint8(v.Type),
					Name:       v.Name,
					Length:     v.Length,
					Bits:       v.Bits,
					Maskable:   v.Maskable,
					MinVersion: v.MinVersion.String(),
					Shape:      v.Shape.String(),
				})
			}

			return printFields(cmd.OutOrStdout(), rows, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table or yaml)")

	return cmd
}

func printFields(w io.Writer, rows []fieldRow, output string) error {
	switch output {
	case "table":
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tNAME\tLENGTH\tBITS\tMASKABLE\tSINCE\tSHAPE")
		for _, v := range rows {
			fmt.Fprintf(tw, "%v\t%v\t%v\t%v\t%v\t%v\t%v\n", v.Code, v.Name, v.Length, v.Bits, v.Maskable, v.MinVersion, v.Shape)
		}
		return tw.Flush()
	case "yaml":
		b, err := yaml.Marshal(rows)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return errors.Errorf("unknown output format: %v", output)
	}
}
