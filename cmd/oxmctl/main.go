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
	"os"

	"github.com/superkkt/oxm"
	"github.com/superkkt/oxm/log"
	"github.com/superkkt/oxm/openflow"
	"github.com/superkkt/oxm/openflow/match"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

const programName = "oxmctl"

var (
	logger = logging.MustGetLogger("main")
)

// options are the persistent flags shared by every sub-command.
type options struct {
	version       string
	wideMPLSLabel bool
	debug         bool
}

func (r *options) protocolVersion() (openflow.Version, error) {
	return openflow.ParseVersion(r.version)
}

func (r *options) registry() *match.Registry {
	return match.NewRegistry(match.Config{WideMPLSLabel: r.wideMPLSLabel})
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           programName,
		Short:         "OpenFlow match codec tool",
		Long:          "Decodes, encodes and validates OpenFlow 1.0 to 1.3 matches.",
		Version:       oxm.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logging.WARNING
			if opts.debug {
				level = logging.DEBUG
			}
			log.Setup(logging.NewLogBackend(cmd.ErrOrStderr(), "", 0), level)
		},
	}
	root.CompletionOptions.HiddenDefaultCmd = true
	root.PersistentFlags().StringVarP(&opts.version, "of-version", "V", "1.3", "OpenFlow version (1.0, 1.1, 1.2 or 1.3)")
	root.PersistentFlags().BoolVar(&opts.wideMPLSLabel, "wide-mpls-label", false, "encode MPLS_LABEL with 4 bytes")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "print debug logs to the standard error")

	root.AddCommand(newDecodeCmd(opts))
	root.AddCommand(newEncodeCmd(opts))
	root.AddCommand(newValidateCmd(opts))
	root.AddCommand(newFieldsCmd(opts))

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", programName, err)
		os.Exit(1)
	}
}
