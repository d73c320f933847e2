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

package match

import (
	"testing"

	"github.com/pkg/errors"
)

func TestParseText(t *testing.T) {
	samples := []struct {
		Input    string
		Expected string
	}{
		{
			Input:    "in_port=3, eth_type=IPv4, ipv4_src=10.0.0.0/8, ip_proto=tcp, tcp_dst=80",
			Expected: "in_port=3,eth_type=0x0800,ipv4_src=10.0.0.0/255.0.0.0,ip_proto=6,tcp_dst=80",
		},
		{
			Input:    "in_port=controller,vlan_vid=any,vlan_pcp=3,eth_dst=01:00:5e:00:00:00/ff:ff:ff:80:00:00",
			Expected: "in_port=controller,vlan_vid=any,vlan_pcp=3,eth_dst=01:00:5e:00:00:00/ff:ff:ff:80:00:00",
		},
		{
			Input:    "vlan_vid=0x1000/0x1000,metadata=0x10/0xf0,tunnel_id=7",
			Expected: "vlan_vid=any,metadata=0x10/0xf0,tunnel_id=0x7",
		},
		{
			Input:    "eth_type=0x86dd,ipv6_src=2001:db8::/32,ipv6_exthdr=0x10/0x110,ipv6_flabel=0x12345",
			Expected: "eth_type=0x86dd,ipv6_src=2001:db8::/ffff:ffff::,ipv6_exthdr=0x010/0x110,ipv6_flabel=74565",
		},
		{
			Input:    "eth_type=0x8847,mpls_label=100,mpls_tc=7,mpls_bos=1",
			Expected: "eth_type=0x8847,mpls_label=100,mpls_tc=7,mpls_bos=1",
		},
	}

	for _, v := range samples {
		m, err := ParseText(v13, v.Input)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", v.Input, err)
		}
		if m.String() != v.Expected {
			t.Fatalf("unexpected text: expected=%v, actual=%v", v.Expected, m.String())
		}

		again, err := ParseText(v13, m.String())
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", m.String(), err)
		}
		if again.Equal(m) == false {
			t.Fatalf("text form does not round trip: %v", m.String())
		}
	}
}

func TestParseTextErrors(t *testing.T) {
	samples := []struct {
		Input string
		Kind  error
	}{
		{"in_port", ErrInvalidText},
		{"no_such_field=1", ErrInvalidText},
		{"in_port=3/0xff", ErrUnexpectedMask},
		{"eth_type=0x0800,ip_ecn=4", ErrOutOfRange},
		{"eth_type=0x0800,ipv4_src=10.0.0.1/33", ErrOutOfRange},
		{"eth_type=0x0800,ipv4_src=2001:db8::1", ErrFamilyNotAppropriate},
		{"eth_type=0x0800,ip_proto=6,ip_proto=17", ErrDuplicate},
		{"tcp_dst=80", ErrPrerequisitesNotMet},
		{"vlan_vid=0x1000/0x1fff", ErrVlanBadMaskCombination},
		{"eth_src=00:11:22", ErrInvalidText},
	}

	for _, v := range samples {
		_, err := ParseText(v13, v.Input)
		if errors.Is(err, v.Kind) == false {
			t.Fatalf("unexpected error for %v: expected=%v, actual=%v", v.Input, v.Kind, err)
		}
	}
}

func TestParseFields(t *testing.T) {
	fields, err := ParseFields(v13, "tcp_dst=80, ip_proto=6, ip_proto=6,")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("unexpected number of fields: %v", len(fields))
	}

	err = Validate(fields)
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected a validation error, got %v", err)
	}
	expected := []error{ErrPrerequisitesNotMet, ErrPrerequisitesNotMet, ErrDuplicate}
	if len(verr.Violations) != len(expected) {
		t.Fatalf("unexpected violations: %v", verr)
	}
	for i, v := range verr.Violations {
		if v.Kind != expected[i] {
			t.Fatalf("unexpected violation #%v: expected=%v, actual=%v", i, expected[i], v.Kind)
		}
	}
	if verr.Kind != ErrPrerequisitesNotMet || verr.Field != "tcp_dst" {
		t.Fatalf("unexpected first field: %v", verr.Field)
	}
}

func TestParseFieldsRegistry(t *testing.T) {
	wide := NewRegistry(Config{WideMPLSLabel: true})
	fields, err := wide.ParseFields(v13, "eth_type=0x8847,mpls_label=100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l := fields[1].Header().Length; l != 4 {
		t.Fatalf("unexpected mpls_label length: %v", l)
	}

	fields, err = ParseFields(v13, "eth_type=0x8847,mpls_label=100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l := fields[1].Header().Length; l != 3 {
		t.Fatalf("unexpected mpls_label length: %v", l)
	}
}
