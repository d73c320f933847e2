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

package openflow

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
)

func TestParseVersion(t *testing.T) {
	samples := []struct {
		Input         string
		Expected      Version
		ErrorExpected bool
	}{
		{Input: "1.0", Expected: OF10_VERSION},
		{Input: "OF11", Expected: OF11_VERSION},
		{Input: "of1.2", Expected: OF12_VERSION},
		{Input: " 1.3 ", Expected: OF13_VERSION},
		{Input: "4", Expected: OF13_VERSION},
		{Input: "0x01", Expected: OF10_VERSION},
		{Input: "1.4", ErrorExpected: true},
		{Input: "5", ErrorExpected: true},
		{Input: "", ErrorExpected: true},
	}

	for _, v := range samples {
		version, err := ParseVersion(v.Input)
		if v.ErrorExpected {
			if errors.Cause(err) != ErrUnsupportedVersion {
				t.Fatalf("expected ErrUnsupportedVersion for %q, got %v", v.Input, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", v.Input, err)
		}
		if version != v.Expected {
			t.Fatalf("unexpected version for %q: expected=%v, actual=%v", v.Input, v.Expected, version)
		}
	}
}

func TestVersionIsOXM(t *testing.T) {
	if OF10_VERSION.IsOXM() || OF11_VERSION.IsOXM() {
		t.Fatal("legacy versions must not be OXM")
	}
	if OF12_VERSION.IsOXM() == false || OF13_VERSION.IsOXM() == false {
		t.Fatal("1.2 and 1.3 must be OXM")
	}
	if Version(0).Valid() || Version(5).Valid() {
		t.Fatal("unexpected valid version")
	}
}

func TestVersionJSON(t *testing.T) {
	v := struct {
		Version Version `json:"version"`
	}{OF12_VERSION}

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != `{"version":"1.2"}` {
		t.Fatalf("unexpected JSON: %s", b)
	}

	if err := json.Unmarshal([]byte(`{"version":"OF13"}`), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Version != OF13_VERSION {
		t.Fatalf("unexpected version: %v", v.Version)
	}
	if err := json.Unmarshal([]byte(`{"version":"2.0"}`), &v); err == nil {
		t.Fatal("expected an error for an unsupported version")
	}
	if _, err := json.Marshal(Version(9)); err == nil {
		t.Fatal("expected an error for an invalid version")
	}
}
