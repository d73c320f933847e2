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

	"github.com/davecgh/go-spew/spew"
)

func TestValidatePrerequisites(t *testing.T) {
	const (
		ipv4   = "eth_type=0x0800,"
		ipv6   = "eth_type=0x86dd,"
		arp    = "eth_type=0x0806,"
		icmpv6 = ipv6 + "ip_proto=58,"
	)

	samples := []struct {
		Field   string
		Valid   string
		Invalid string
	}{
		{"in_phy_port", "in_port=1,in_phy_port=2", "in_phy_port=2"},
		{"vlan_pcp", "vlan_vid=10,vlan_pcp=3", "vlan_vid=none,vlan_pcp=3"},
		{"vlan_pcp", "vlan_vid=any,vlan_pcp=3", "vlan_pcp=3"},
		{"ip_dscp", ipv6 + "ip_dscp=46", arp + "ip_dscp=46"},
		{"ip_ecn", ipv4 + "ip_ecn=1", "ip_ecn=1"},
		{"ip_proto", ipv4 + "ip_proto=6", "eth_type=0x8847,ip_proto=6"},
		{"ipv4_src", ipv4 + "ipv4_src=10.0.0.1", ipv6 + "ipv4_src=10.0.0.1"},
		{"ipv4_dst", ipv4 + "ipv4_dst=10.0.0.1", arp + "ipv4_dst=10.0.0.1"},
		{"tcp_src", ipv4 + "ip_proto=6,tcp_src=80", ipv4 + "ip_proto=17,tcp_src=80"},
		{"udp_dst", ipv6 + "ip_proto=17,udp_dst=53", ipv6 + "ip_proto=6,udp_dst=53"},
		{"sctp_src", ipv4 + "ip_proto=132,sctp_src=9", ipv4 + "ip_proto=6,sctp_src=9"},
		{"sctp_dst", ipv4 + "ip_proto=132,sctp_dst=9", ipv4 + "sctp_dst=9"},
		{"icmpv4_type", ipv4 + "ip_proto=1,icmpv4_type=8", ipv4 + "ip_proto=58,icmpv4_type=8"},
		{"icmpv4_code", ipv4 + "ip_proto=1,icmpv4_code=0", ipv4 + "icmpv4_code=0"},
		{"arp_op", arp + "arp_op=1", ipv4 + "arp_op=1"},
		{"arp_spa", arp + "arp_spa=10.0.0.1", "arp_spa=10.0.0.1"},
		{"arp_tpa", arp + "arp_tpa=10.0.0.2", ipv4 + "arp_tpa=10.0.0.2"},
		{"arp_sha", arp + "arp_sha=00:11:22:33:44:55", ipv6 + "arp_sha=00:11:22:33:44:55"},
		{"arp_tha", arp + "arp_tha=00:11:22:33:44:55", "arp_tha=00:11:22:33:44:55"},
		{"ipv6_src", ipv6 + "ipv6_src=2001:db8::1", ipv4 + "ipv6_src=2001:db8::1"},
		{"ipv6_dst", ipv6 + "ipv6_dst=2001:db8::2", "ipv6_dst=2001:db8::2"},
		{"ipv6_flabel", ipv6 + "ipv6_flabel=5", ipv4 + "ipv6_flabel=5"},
		{"icmpv6_type", icmpv6 + "icmpv6_type=128", ipv6 + "ip_proto=1,icmpv6_type=128"},
		{"icmpv6_code", icmpv6 + "icmpv6_code=0", ipv6 + "icmpv6_code=0"},
		{"ipv6_nd_target", icmpv6 + "icmpv6_type=135,ipv6_nd_target=2001:db8::1", icmpv6 + "icmpv6_type=128,ipv6_nd_target=2001:db8::1"},
		{"ipv6_nd_target", icmpv6 + "icmpv6_type=136,ipv6_nd_target=2001:db8::1", icmpv6 + "ipv6_nd_target=2001:db8::1"},
		{"ipv6_nd_sll", icmpv6 + "icmpv6_type=135,ipv6_nd_sll=00:11:22:33:44:55", icmpv6 + "icmpv6_type=136,ipv6_nd_sll=00:11:22:33:44:55"},
		{"ipv6_nd_tll", icmpv6 + "icmpv6_type=136,ipv6_nd_tll=00:11:22:33:44:55", icmpv6 + "icmpv6_type=135,ipv6_nd_tll=00:11:22:33:44:55"},
		{"mpls_label", "eth_type=0x8847,mpls_label=100", ipv4 + "mpls_label=100"},
		{"mpls_tc", "eth_type=0x8848,mpls_tc=7", "mpls_tc=7"},
		{"mpls_bos", "eth_type=0x8847,mpls_bos=1", ipv6 + "mpls_bos=1"},
		{"pbb_isid", "eth_type=0x88e7,pbb_isid=100", "eth_type=0x8847,pbb_isid=100"},
		{"ipv6_exthdr", ipv6 + "ipv6_exthdr=0x10", ipv4 + "ipv6_exthdr=0x10"},
	}

	for _, v := range samples {
		fields, err := ParseFields(v13, v.Valid)
		if err != nil {
			t.Fatalf("unexpected parse error for %v: %v", v.Valid, err)
		}
		if err := Validate(fields); err != nil {
			t.Fatalf("unexpected validation error for %v: %v", v.Valid, err)
		}

		fields, err = ParseFields(v13, v.Invalid)
		if err != nil {
			t.Fatalf("unexpected parse error for %v: %v", v.Invalid, err)
		}
		verr, ok := Validate(fields).(*ValidationError)
		if !ok {
			t.Fatalf("expected a validation error for %v", v.Invalid)
		}
		if verr.Kind != ErrPrerequisitesNotMet || len(verr.Violations) != 1 {
			t.Fatalf("unexpected violations for %v: %v", v.Invalid, spew.Sdump(verr.Violations))
		}
		if name := verr.Violations[0].Header.Name(); name != v.Field {
			t.Fatalf("unexpected violating field for %v: expected=%v, actual=%v", v.Invalid, v.Field, name)
		}
	}
}
