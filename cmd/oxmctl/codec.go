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
	"io/ioutil"
	"strings"

	"github.com/superkkt/oxm/openflow"
	"github.com/superkkt/oxm/openflow/buffer"
	"github.com/superkkt/oxm/openflow/match"

	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// document is the YAML form of a match. Encode reads it back, so the output of
// decode can be edited and encoded again.
type document struct {
	Version string   `yaml:"version"`
	Kind    string   `yaml:"kind,omitempty"`
	Length  uint16   `yaml:"length,omitempty"`
	Fields  []string `yaml:"fields"`
}

func newDocument(m *match.Match) document {
	doc := document{
		Version: m.Version().String(),
		Kind:    m.Kind().String(),
		Length:  m.Length(),
		Fields:  []string{},
	}
	for _, f := range m.Fields() {
		doc.Fields = append(doc.Fields, f.String())
	}

	return doc
}

func newDecodeCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "decode HEX...",
		Short: "Decode a match from its hex dump",
		Long: `Decode a match from its hex dump. Arguments are joined, so the dump may be
split by spaces. Use - to read the dump from the standard input.`,
		Example: `  oxmctl decode 0001000c800000040000000100000000
  oxmctl -V 1.0 decode -o yaml - < match.hex`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := opts.protocolVersion()
			if err != nil {
				return err
			}
			dump := strings.Join(args, " ")
			if dump == "-" {
				b, err := ioutil.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "reading the standard input")
				}
				dump = string(b)
			}
			data, err := buffer.ParseHex(dump)
			if err != nil {
				return err
			}

			b := buffer.Wrap(data)
			m, err := opts.registry().ParseMatch(b, version)
			if err != nil {
				return err
			}
			logger.Debugf("decoded match: %v", spew.Sdump(m.Fields()))
			if b.Len() > 0 {
				logger.Warningf("ignoring %v trailing bytes", b.Len())
			}

			return printMatch(cmd.OutOrStdout(), m, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text or yaml)")

	return cmd
}

func printMatch(w io.Writer, m *match.Match, output string) error {
	switch output {
	case "text":
		_, err := fmt.Fprintln(w, m.String())
		return err
	case "yaml":
		b, err := yaml.Marshal(newDocument(m))
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return errors.Errorf("unknown output format: %v", output)
	}
}

func newEncodeCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "encode [FIELD=VALUE,...]",
		Short: "Encode a match into its hex dump",
		Long: `Encode a match given as comma separated fields, or as a YAML document read
from a file. The version of the document overrides --of-version.`,
		Example: `  oxmctl encode in_port=1,eth_type=0x0800,ipv4_dst=10.0.0.0/8
  oxmctl encode -f match.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := opts.protocolVersion()
			if err != nil {
				return err
			}

			var text string
			switch {
			case file != "" && len(args) > 0:
				return errors.New("fields and --file are mutually exclusive")
			case file != "":
				doc, err := readDocument(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				if doc.Version != "" {
					if version, err = openflow.ParseVersion(doc.Version); err != nil {
						return err
					}
				}
				text = strings.Join(doc.Fields, ",")
			case len(args) > 0:
				text = args[0]
			default:
				return errors.New("no match fields")
			}

			m, err := opts.registry().ParseText(version, text)
			if err != nil {
				return err
			}
			data, err := m.MarshalBinary()
			if err != nil {
				return err
			}
			logger.Debugf("encoded %v into %v bytes", m, len(data))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), buffer.FormatHex(data))

			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML document to encode (- for the standard input)")

	return cmd
}

func readDocument(stdin io.Reader, file string) (document, error) {
	var (
		b   []byte
		err error
	)
	if file == "-" {
		b, err = ioutil.ReadAll(stdin)
	} else {
		b, err = ioutil.ReadFile(file)
	}
	if err != nil {
		return document{}, errors.Wrapf(err, "reading %v", file)
	}

	doc := document{}
	if err := yaml.UnmarshalWithOptions(b, &doc, yaml.Strict()); err != nil {
		return document{}, errors.Wrapf(err, "parsing %v", file)
	}

	return doc, nil
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FIELD=VALUE,...",
		Short: "Check duplicates and prerequisites of a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := opts.protocolVersion()
			if err != nil {
				return err
			}
			fields, err := match.ParseFields(version, args[0])
			if err != nil {
				return err
			}
			if err := match.Validate(fields); err != nil {
				verr, ok := err.(*match.ValidationError)
				if !ok {
					return err
				}
				for _, v := range verr.Violations {
					fmt.Fprintln(cmd.OutOrStdout(), v.String())
				}
				return errors.Errorf("%v violation(s)", len(verr.Violations))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")

			return err
		},
	}
}
