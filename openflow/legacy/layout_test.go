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

package legacy

import (
	"bytes"
	"encoding/hex"
	"net"
	"strings"
	"testing"

	"github.com/superkkt/oxm/openflow"
	"github.com/superkkt/oxm/openflow/buffer"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func mustDecodeHex(s string) []byte {
	v, err := hex.DecodeString(s)
	if err != nil {
		panic("invalid hex string")
	}
	return v
}

func TestCodec(t *testing.T) {
	samples := []struct {
		Packet   string
		Version  openflow.Version
		Expected Layout
	}{
		{
			// in_port=3, dl_type=0x0800, nw_proto=6, tp_dst=80
			Packet: "003fff4e" + "0003" + "000000000000" + "000000000000" + "0000" + "00" + "00" +
				"0800" + "00" + "06" + "0000" + "00000000" + "00000000" + "0000" + "0050",
			Version: openflow.OF10_VERSION,
			Expected: Layout{
				Version:   openflow.OF10_VERSION,
				Wildcards: WildcardAll &^ (WildcardInPort | WildcardEtherType | WildcardProtocol | WildcardDstPort),
				InPort:    3,
				SrcMAC:    net.HardwareAddr{0, 0, 0, 0, 0, 0},
				DstMAC:    net.HardwareAddr{0, 0, 0, 0, 0, 0},
				EtherType: 0x0800,
				Protocol:  6,
				SrcIP:     net.IPv4(0, 0, 0, 0).To4(),
				SrcIPMask: net.CIDRMask(0, 32),
				DstIP:     net.IPv4(0, 0, 0, 0).To4(),
				DstIPMask: net.CIDRMask(0, 32),
				DstPort:   80,
			},
		},
		{
			// in_port=controller, dl_src=00:11:22:33:44:55, nw_src=10.1.0.0/16, nw_tos=0xb8
			Packet: "001fd0e8" + "fffd" + "001122334455" + "000000000000" + "ffff" + "00" + "00" +
				"0800" + "b8" + "00" + "0000" + "0a010000" + "00000000" + "0000" + "0000",
			Version: openflow.OF10_VERSION,
			Expected: Layout{
				Version:   openflow.OF10_VERSION,
				Wildcards: WildcardAll &^ (WildcardInPort | WildcardSrcMAC | WildcardVLANID | WildcardEtherType | WildcardTOS),
				InPort:    0xfffffffd,
				SrcMAC:    net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
				DstMAC:    net.HardwareAddr{0, 0, 0, 0, 0, 0},
				VLANID:    OFPVID_NONE,
				EtherType: 0x0800,
				TOS:       0xb8,
				SrcIP:     net.IPv4(10, 1, 0, 0).To4(),
				SrcIPMask: net.CIDRMask(16, 32),
				DstIP:     net.IPv4(0, 0, 0, 0).To4(),
				DstIPMask: net.CIDRMask(0, 32),
			},
		},
		{
			// in_port=7, dl_dst=aa:bb:cc:00:00:00/ff:ff:ff:00:00:00, mpls_label=100, metadata=0x10/0xf0
			Packet: "0000" + "0058" + "00000007" + "000002f6" +
				"000000000000" + "ffffffffffff" + "aabbcc000000" + "000000ffffff" +
				"0000" + "00" + "00" + "8847" + "00" + "00" +
				"00000000" + "ffffffff" + "00000000" + "ffffffff" + "0000" + "0000" +
				"00000064" + "00" + "000000" + "0000000000000010" + "ffffffffffffff0f",
			Version: openflow.OF11_VERSION,
			Expected: Layout{
				Version:      openflow.OF11_VERSION,
				Wildcards:    WildcardAll &^ (WildcardInPort | WildcardDstMAC | WildcardEtherType | WildcardMPLSLabel),
				InPort:       7,
				SrcMAC:       net.HardwareAddr{0, 0, 0, 0, 0, 0},
				DstMAC:       net.HardwareAddr{0xaa, 0xbb, 0xcc, 0, 0, 0},
				DstMACMask:   net.HardwareAddr{0xff, 0xff, 0xff, 0, 0, 0},
				EtherType:    0x8847,
				SrcIP:        net.IPv4(0, 0, 0, 0).To4(),
				SrcIPMask:    net.IPMask{0, 0, 0, 0},
				DstIP:        net.IPv4(0, 0, 0, 0).To4(),
				DstIPMask:    net.IPMask{0, 0, 0, 0},
				MPLSLabel:    100,
				Metadata:     0x10,
				MetadataMask: 0xf0,
			},
		},
	}

	for _, v := range samples {
		p := mustDecodeHex(v.Packet)
		l, err := Decode(buffer.Wrap(p), v.Version)
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
		if cmp.Equal(*l, v.Expected) == false {
			t.Fatalf("unexpected layout: expected=%v, actual=%v, diff=%v", spew.Sdump(v.Expected), spew.Sdump(*l), cmp.Diff(v.Expected, *l))
		}

		b := buffer.New()
		if err := l.Encode(b); err != nil {
			t.Fatalf("unexpected encode error: %v", err)
		}
		if bytes.Equal(b.Bytes(), p) == false {
			t.Fatalf("unexpected encoded layout: expected=%x, actual=%x", p, b.Bytes())
		}
	}
}

func TestNewLayoutIsAllWild(t *testing.T) {
	l := NewLayout(openflow.OF10_VERSION)
	data, err := l.MarshalBinary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := mustDecodeHex("003fffff" + "0000" + "000000000000" + "000000000000" + "0000" + "00" + "00" +
		"0000" + "00" + "00" + "0000" + "00000000" + "00000000" + "0000" + "0000")
	if bytes.Equal(data, expected) == false {
		t.Fatalf("unexpected all-wild match: expected=%x, actual=%x", expected, data)
	}
}

func TestDecodeErrors(t *testing.T) {
	samples := []struct {
		Packet   string
		Version  openflow.Version
		Expected error
	}{
		{Packet: "003fffff0000", Version: openflow.OF10_VERSION, Expected: buffer.ErrShortBuffer},
		{Packet: "0001" + "0058" + "00" + strings.Repeat("00", 83), Version: openflow.OF11_VERSION, Expected: ErrUnsupportedMatchType},
		{Packet: "0000" + "0050" + "00" + strings.Repeat("00", 83), Version: openflow.OF11_VERSION, Expected: ErrInvalidMatchLength},
		{Packet: "", Version: openflow.OF13_VERSION, Expected: openflow.ErrUnsupportedVersion},
	}

	for _, v := range samples {
		_, err := Decode(buffer.Wrap(mustDecodeHex(v.Packet)), v.Version)
		if errors.Cause(err) != v.Expected {
			t.Fatalf("expected %v, got %v", v.Expected, err)
		}
	}
}

func TestPortMapping(t *testing.T) {
	samples := []struct {
		Port          uint32
		Legacy        uint16
		ErrorExpected bool
	}{
		{Port: 1, Legacy: 1},
		{Port: 0xfeff, Legacy: 0xfeff},
		{Port: 0xfffffff8, Legacy: 0xfff8},
		{Port: 0xfffffffd, Legacy: 0xfffd},
		{Port: 0xffffffff, Legacy: 0xffff},
		{Port: 0xff00, Legacy: 0xff00},
		{Port: 0xfff7, Legacy: 0xfff7},
		{Port: 0xfff8, ErrorExpected: true},
		{Port: 0xffff, ErrorExpected: true},
		{Port: 0x10000, ErrorExpected: true},
		{Port: 0xfffffff7, ErrorExpected: true},
	}

	for _, v := range samples {
		p, err := of10Port(v.Port)
		if v.ErrorExpected {
			if errors.Cause(err) != ErrPortOutOfRange {
				t.Fatalf("port=%x: expected ErrPortOutOfRange, got %v", v.Port, err)
			}
			continue
		}
		if err != nil || p != v.Legacy {
			t.Fatalf("port=%x: expected=%x, actual=%x, err=%v", v.Port, v.Legacy, p, err)
		}
		if port10(p) != v.Port {
			t.Fatalf("port=%x: reverse mapping returned %x", v.Port, port10(p))
		}
	}
}

func TestMACMaskOnOF10(t *testing.T) {
	l := NewLayout(openflow.OF10_VERSION)
	l.SrcMACMask = net.HardwareAddr{0xff, 0xff, 0xff, 0, 0, 0}
	if _, err := l.MarshalBinary(); err != ErrMaskNotSupported {
		t.Fatalf("expected ErrMaskNotSupported, got %v", err)
	}
}
