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
	"bytes"
	"net"
	"testing"

	"github.com/superkkt/oxm/openflow"
	"github.com/superkkt/oxm/openflow/buffer"
	"github.com/superkkt/oxm/openflow/legacy"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
)

const (
	v10 = openflow.OF10_VERSION
	v11 = openflow.OF11_VERSION
)

func TestLegacyCodec(t *testing.T) {
	samples := []struct {
		Packet  string
		Version openflow.Version
		Text    string
	}{
		{
			Packet: "003fff4e" + "0003" + "000000000000" + "000000000000" + "0000" + "00" + "00" +
				"0800" + "00" + "06" + "0000" + "00000000" + "00000000" + "0000" + "0050",
			Version: v10,
			Text:    "in_port=3,eth_type=0x0800,ip_proto=6,tcp_dst=80",
		},
		{
			Packet: "001fd0e8" + "fffd" + "001122334455" + "000000000000" + "ffff" + "00" + "00" +
				"0800" + "b8" + "00" + "0000" + "0a010000" + "00000000" + "0000" + "0000",
			Version: v10,
			Text:    "in_port=controller,eth_src=00:11:22:33:44:55,vlan_vid=none,eth_type=0x0800,ip_dscp=46,ipv4_src=10.1.0.0/255.255.0.0",
		},
		// Physical ports between OFPP_MAX and OFPP_IN_PORT keep their number.
		{
			Packet: "003ffffe" + "ff00" + "000000000000" + "000000000000" + "0000" + "00" + "00" +
				"0000" + "00" + "00" + "0000" + "00000000" + "00000000" + "0000" + "0000",
			Version: v10,
			Text:    "in_port=65280",
		},
		{
			Packet: "0000" + "0058" + "00000007" + "000002f6" +
				"000000000000" + "ffffffffffff" + "aabbcc000000" + "000000ffffff" +
				"0000" + "00" + "00" + "8847" + "00" + "00" +
				"00000000" + "ffffffff" + "00000000" + "ffffffff" + "0000" + "0000" +
				"00000064" + "00" + "000000" + "0000000000000010" + "ffffffffffffff0f",
			Version: v11,
			Text:    "in_port=7,eth_dst=aa:bb:cc:00:00:00/ff:ff:ff:00:00:00,eth_type=0x8847,mpls_label=100,metadata=0x10/0xf0",
		},
	}

	for _, v := range samples {
		p := mustDecodeHex(v.Packet)
		b := buffer.Wrap(p)
		m, err := ParseMatch(b, v.Version)
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
		if b.Len() != 0 {
			t.Fatalf("unexpected remaining bytes: %v", b.Len())
		}
		if m.Kind() != KindStandard || int(m.Length()) != len(p) || m.EncodedLength() != len(p) {
			t.Fatalf("unexpected match header: kind=%v, length=%v", m.Kind(), m.Length())
		}
		if m.String() != v.Text {
			t.Fatalf("unexpected fields: expected=%v, actual=%v", v.Text, m.String())
		}

		data, err := m.MarshalBinary()
		if err != nil {
			t.Fatalf("unexpected encode error: %v", err)
		}
		if bytes.Equal(data, p) == false {
			t.Fatalf("unexpected encoded match: expected=%x, actual=%x", p, data)
		}
	}
}

// The 1.0 sample yields exactly in_port, eth_type, ip_proto and tcp_dst.
func TestFabricateFields(t *testing.T) {
	p := mustDecodeHex("003fff4e" + "0003" + "000000000000" + "000000000000" + "0000" + "00" + "00" +
		"0800" + "00" + "06" + "0000" + "00000000" + "00000000" + "0000" + "0050")
	m, err := ParseMatch(buffer.Wrap(p), v10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := mustMatch(v10,
		must(NewPortField(v10, OFPXMT_OFB_IN_PORT, 3)),
		must(NewEthTypeField(v10, layers.EthernetTypeIPv4)),
		must(NewIPProtoField(v10, layers.IPProtocolTCP)),
		must(NewIntField(v10, OFPXMT_OFB_TCP_DST, 80)),
	)
	if m.Equal(expected) == false {
		t.Fatalf("unexpected match: expected=%v, actual=%v", spew.Sdump(expected), spew.Sdump(m))
	}
}

func TestLegacyARPAndICMP(t *testing.T) {
	arp := legacy.NewLayout(v10)
	arp.Wildcards.Clear(legacy.WildcardEtherType | legacy.WildcardProtocol)
	arp.EtherType = 0x0806
	arp.Protocol = 1
	arp.SrcIP = net.IPv4(10, 0, 0, 1).To4()
	arp.SrcIPMask = net.CIDRMask(32, 32)

	icmp := legacy.NewLayout(v11)
	icmp.Wildcards.Clear(legacy.WildcardEtherType | legacy.WildcardProtocol | legacy.WildcardSrcPort | legacy.WildcardDstPort)
	icmp.EtherType = 0x0800
	icmp.Protocol = 1
	icmp.SrcPort = 8
	icmp.DstPort = 0

	samples := []struct {
		Layout *legacy.Layout
		Text   string
	}{
		{arp, "eth_type=0x0806,arp_op=1,arp_spa=10.0.0.1"},
		{icmp, "eth_type=0x0800,ip_proto=1,icmpv4_type=8,icmpv4_code=0"},
	}

	for _, v := range samples {
		m, err := Fabricate(v.Layout)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.String() != v.Text {
			t.Fatalf("unexpected fields: expected=%v, actual=%v", v.Text, m.String())
		}

		layout, err := ConvertToLegacy(m)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmp.Equal(layout, v.Layout) == false {
			t.Fatalf("unexpected layout: diff=%v", cmp.Diff(v.Layout, layout))
		}
	}
}

func TestLegacyVLAN(t *testing.T) {
	samples := []struct {
		Version openflow.Version
		Raw     uint16
		Text    string
	}{
		{v10, legacy.OFPVID_NONE, "vlan_vid=none"},
		{v10, 10, "vlan_vid=10"},
		{v11, legacy.OFPVID_ANY, "vlan_vid=any"},
		{v11, 4095, "vlan_vid=4095"},
	}

	for _, v := range samples {
		l := legacy.NewLayout(v.Version)
		l.Wildcards.Clear(legacy.WildcardVLANID)
		l.VLANID = v.Raw
		m, err := Fabricate(l)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.String() != v.Text {
			t.Fatalf("unexpected fields: expected=%v, actual=%v", v.Text, m.String())
		}
		back, err := ConvertToLegacy(m)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if back.VLANID != v.Raw || back.Wildcards.Has(legacy.WildcardVLANID) {
			t.Fatalf("unexpected layout: %v", spew.Sdump(back))
		}
	}

	// 1.0 has no "any tag" sentinel.
	m := mustMatch(v10, must(NewVLANField(v10, VLANAny, 0)))
	var mismatch *VersionMismatchError
	if _, err := m.MarshalBinary(); errors.As(err, &mismatch) == false {
		t.Fatalf("expected a version mismatch, got %v", err)
	}
}

func TestLegacyErrors(t *testing.T) {
	// A non-contiguous netmask cannot be expressed by 1.0.
	m := mustMatch(v10,
		must(NewEthTypeField(v10, layers.EthernetTypeIPv4)),
		must(NewMaskedIPField(v10, OFPXMT_OFB_IPV4_SRC, net.IPv4(10, 0, 0, 0), net.IPv4Mask(255, 0, 255, 0))),
	)
	_, err := m.MarshalBinary()
	var verr *ValidationError
	if errors.As(err, &verr) == false || verr.Kind != ErrInvalidNetmask {
		t.Fatalf("expected an invalid netmask error, got %v", err)
	}

	// 1.1 carries arbitrary masks.
	m = mustMatch(v11,
		must(NewEthTypeField(v11, layers.EthernetTypeIPv4)),
		must(NewMaskedIPField(v11, OFPXMT_OFB_IPV4_SRC, net.IPv4(10, 0, 0, 0), net.IPv4Mask(255, 0, 255, 0))),
	)
	data, err := m.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded, err := ParseMatch(buffer.Wrap(data), v11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Equal(m) == false {
		t.Fatalf("unexpected match: expected=%v, actual=%v", m, decoded)
	}

	// Fields the legacy layouts cannot carry are rejected on append.
	samples := []struct {
		Version  openflow.Version
		Field    Field
		Required openflow.Version
	}{
		{v10, must(NewIntField(v10, OFPXMT_OFB_MPLS_LABEL, 1)), v11},
		{v10, must(NewIntField(v10, OFPXMT_OFB_SCTP_DST, 1)), v11},
		{v11, must(NewIntField(v11, OFPXMT_OFB_IP_ECN, 1)), v12},
		{v11, must(NewIntField(v11, OFPXMT_OFB_MPLS_BOS, 1)), v13},
		{v10, must(NewOpaqueField(v10, OFPXMC_NXM_0, 1, false, nil)), v12},
	}
	for _, v := range samples {
		b, err := NewBuilder(v.Version)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var mismatch *VersionMismatchError
		if err := b.Append(v.Field); errors.As(err, &mismatch) == false {
			t.Fatalf("expected a version mismatch for %v, got %v", v.Field, err)
		}
		if mismatch.Required != v.Required || mismatch.Actual != v.Version {
			t.Fatalf("unexpected version mismatch: %v", spew.Sdump(mismatch))
		}
	}

	// 1.0 ports above OFPP_MAX that are not reserved do not fit.
	m = mustMatch(v10, must(NewPortField(v10, OFPXMT_OFB_IN_PORT, 0x12345)))
	if _, err := m.MarshalBinary(); errors.Is(err, legacy.ErrPortOutOfRange) == false {
		t.Fatalf("expected a port range error, got %v", err)
	}
}
