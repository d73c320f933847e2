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
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(ioutil.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

func TestDecode(t *testing.T) {
	samples := []struct {
		Args     []string
		Stdin    string
		Expected string
	}{
		{
			Args:     []string{"decode", "0001000c800000040000000100000000"},
			Expected: "in_port=1\n",
		},
		{
			Args:     []string{"decode", "0001 0017", "80000004 00000001", "80000a02 0800", "80001401 11 00"},
			Expected: "in_port=1,eth_type=0x0800,ip_proto=17\n",
		},
		{
			Args:     []string{"-V", "1.2", "decode", "-"},
			Stdin:    "0001000c\n8000000400000001\n00000000\n",
			Expected: "in_port=1\n",
		},
	}

	for _, v := range samples {
		out, err := run(t, v.Stdin, v.Args...)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", v.Args, err)
		}
		if out != v.Expected {
			t.Fatalf("unexpected output for %v: expected=%q, actual=%q", v.Args, v.Expected, out)
		}
	}
}

func TestDecodeYAML(t *testing.T) {
	out, err := run(t, "", "decode", "-o", "yaml", "0001 0017 80000004 00000001 80000a02 0800 80001401 11 00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := document{}
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("failed to parse the output: %v\n%v", err, out)
	}
	expected := document{
		Version: "1.3",
		Kind:    "oxm",
		Length:  23,
		Fields:  []string{"in_port=1", "eth_type=0x0800", "ip_proto=17"},
	}
	if cmp.Equal(expected, doc) == false {
		t.Fatalf("unexpected document: %v", cmp.Diff(expected, doc))
	}
}

func TestEncode(t *testing.T) {
	out, err := run(t, "", "encode", "eth_type=0x0800,ip_proto=17")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "0001000f80000a020800800014011100\n" {
		t.Fatalf("unexpected output: %q", out)
	}

	dir, err := ioutil.TempDir("", "oxmctl")
	if err != nil {
		t.Fatalf("failed to create a temporary directory: %v", err)
	}
	defer os.RemoveAll(dir)
	file := filepath.Join(dir, "match.yaml")
	doc := "version: \"1.3\"\nfields:\n  - in_port=1\n"
	if err := ioutil.WriteFile(file, []byte(doc), 0644); err != nil {
		t.Fatalf("failed to write the document: %v", err)
	}

	// The version of the document wins over the flag.
	out, err = run(t, "", "-V", "1.0", "encode", "-f", file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "0001000c800000040000000100000000\n" {
		t.Fatalf("unexpected output: %q", out)
	}

	out, err = run(t, doc, "encode", "-f", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "0001000c800000040000000100000000\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestEncodeLegacy(t *testing.T) {
	out, err := run(t, "", "-V", "1.0", "encode", "in_port=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 40 bytes of ofp_match.
	if len(strings.TrimSpace(out)) != 80 {
		t.Fatalf("unexpected output: %q", out)
	}

	back, err := run(t, "", "-V", "1.0", "decode", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != "in_port=1\n" {
		t.Fatalf("unexpected round trip: %q", back)
	}
}

func TestErrors(t *testing.T) {
	samples := [][]string{
		{"decode", "zz"},
		{"decode", "0001000d800000040000000100000000"},
		{"-V", "2.0", "decode", "0001000c800000040000000100000000"},
		{"decode", "-o", "json", "0001000c800000040000000100000000"},
		{"encode"},
		{"encode", "tcp_dst=80"},
		{"encode", "-f", "/nonexistent/match.yaml"},
		{"validate", "tcp_dst=80"},
		{"fields", "-o", "xml"},
	}

	for _, v := range samples {
		if _, err := run(t, "", v...); err == nil {
			t.Fatalf("expected an error for %v", v)
		}
	}
}

func TestValidate(t *testing.T) {
	out, err := run(t, "", "validate", "eth_type=0x0800,ip_proto=6,tcp_dst=80")
	if err != nil || out != "ok\n" {
		t.Fatalf("unexpected result: out=%q, err=%v", out, err)
	}

	out, err = run(t, "", "validate", "tcp_dst=80,ip_proto=6,ip_proto=6")
	if err == nil {
		t.Fatal("expected an error")
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 3 {
		t.Fatalf("unexpected violations: %q", out)
	}
}

func TestFields(t *testing.T) {
	out, err := run(t, "", "fields")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// Header plus every basic field.
	if len(lines) != 41 {
		t.Fatalf("unexpected number of lines: %v", len(lines))
	}
	if strings.HasPrefix(lines[0], "CODE") == false || strings.Contains(lines[1], "in_port") == false {
		t.Fatalf("unexpected table: %v", out)
	}

	out, err = run(t, "", "--wide-mpls-label", "fields", "-o", "yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := []fieldRow{}
	if err := yaml.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("failed to parse the output: %v", err)
	}
	if rows[34].Name != "mpls_label" || rows[34].Length != 4 || rows[34].Bits != 20 {
		t.Fatalf("unexpected mpls_label row: %+v", rows[34])
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	samples := [][]string{
		{"decode", "-o", "json", "0001000c800000040000000100000000"},
		{"fields", "-o", "xml"},
	}

	for _, v := range samples {
		_, err := run(t, "", v...)
		if err == nil || strings.HasPrefix(err.Error(), "unknown output format") == false {
			t.Fatalf("unexpected error for %v: %v", v, err)
		}
		// Errors carry a stack trace like every other error of the tool.
		if _, ok := err.(interface{ StackTrace() errors.StackTrace }); !ok {
			t.Fatalf("error without a stack trace for %v: %v", v, err)
		}
	}
}
