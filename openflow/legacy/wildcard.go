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
	"strings"
)

// Wildcards is the version independent set of "don't care" attributes of a
// legacy match. IPv4 addresses and metadata are not part of it: they are
// wildcarded through their netmasks.
type Wildcards uint32

const (
	WildcardInPort Wildcards = 1 << iota
	WildcardVLANID
	WildcardVLANPriority
	WildcardSrcMAC
	WildcardDstMAC
	WildcardEtherType
	WildcardTOS
	WildcardProtocol
	WildcardSrcPort
	WildcardDstPort
	WildcardMPLSLabel
	WildcardMPLSTC

	WildcardAll = WildcardInPort | WildcardVLANID | WildcardVLANPriority | WildcardSrcMAC | WildcardDstMAC |
		WildcardEtherType | WildcardTOS | WildcardProtocol | WildcardSrcPort | WildcardDstPort |
		WildcardMPLSLabel | WildcardMPLSTC
)

var wildcardNames = []struct {
	flag Wildcards
	name string
}{
	{WildcardInPort, "in_port"},
	{WildcardVLANID, "dl_vlan"},
	{WildcardVLANPriority, "dl_vlan_pcp"},
	{WildcardSrcMAC, "dl_src"},
	{WildcardDstMAC, "dl_dst"},
	{WildcardEtherType, "dl_type"},
	{WildcardTOS, "nw_tos"},
	{WildcardProtocol, "nw_proto"},
	{WildcardSrcPort, "tp_src"},
	{WildcardDstPort, "tp_dst"},
	{WildcardMPLSLabel, "mpls_label"},
	{WildcardMPLSTC, "mpls_tc"},
}

func (r Wildcards) Has(flag Wildcards) bool {
	return r&flag != 0
}

func (r *Wildcards) Set(flag Wildcards) {
	*r |= flag
}

func (r *Wildcards) Clear(flag Wildcards) {
	*r &^= flag
}

func (r Wildcards) String() string {
	names := make([]string, 0)
	for _, v := range wildcardNames {
		if r.Has(v.flag) {
			names = append(names, v.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, "|")
}

// of10 pairs a flag with its OpenFlow 1.0 wire bit.
var of10Bits = []struct {
	flag Wildcards
	bit  uint32
}{
	{WildcardInPort, OFPFW_IN_PORT},
	{WildcardVLANID, OFPFW_DL_VLAN},
	{WildcardSrcMAC, OFPFW_DL_SRC},
	{WildcardDstMAC, OFPFW_DL_DST},
	{WildcardEtherType, OFPFW_DL_TYPE},
	{WildcardProtocol, OFPFW_NW_PROTO},
	{WildcardSrcPort, OFPFW_TP_SRC},
	{WildcardDstPort, OFPFW_TP_DST},
	{WildcardVLANPriority, OFPFW_DL_VLAN_PCP},
	{WildcardTOS, OFPFW_NW_TOS},
}

var of11Bits = []struct {
	flag Wildcards
	bit  uint32
}{
	{WildcardInPort, OFPFW11_IN_PORT},
	{WildcardVLANID, OFPFW11_DL_VLAN},
	{WildcardVLANPriority, OFPFW11_DL_VLAN_PCP},
	{WildcardEtherType, OFPFW11_DL_TYPE},
	{WildcardTOS, OFPFW11_NW_TOS},
	{WildcardProtocol, OFPFW11_NW_PROTO},
	{WildcardSrcPort, OFPFW11_TP_SRC},
	{WildcardDstPort, OFPFW11_TP_DST},
	{WildcardMPLSLabel, OFPFW11_MPLS_LABEL},
	{WildcardMPLSTC, OFPFW11_MPLS_TC},
}

// of10Wildcards encodes the flag set and the IP wildcard bit counts into the
// OpenFlow 1.0 wildcards word.
func of10Wildcards(w Wildcards, srcBits, dstBits uint8) uint32 {
	var v uint32 = 0
	for _, b := range of10Bits {
		if w.Has(b.flag) {
			v = v | b.bit
		}
	}
	v = v | (uint32(srcBits)<<OFPFW_NW_SRC_SHIFT)&OFPFW_NW_SRC_MASK
	v = v | (uint32(dstBits)<<OFPFW_NW_DST_SHIFT)&OFPFW_NW_DST_MASK

	return v
}

func parseOF10Wildcards(v uint32) (w Wildcards, srcBits, dstBits uint8) {
	for _, b := range of10Bits {
		if v&b.bit != 0 {
			w.Set(b.flag)
		}
	}
	// MPLS does not exist in 1.0.
	w.Set(WildcardMPLSLabel | WildcardMPLSTC)
	srcBits = uint8((v & OFPFW_NW_SRC_MASK) >> OFPFW_NW_SRC_SHIFT)
	dstBits = uint8((v & OFPFW_NW_DST_MASK) >> OFPFW_NW_DST_SHIFT)

	return w, srcBits, dstBits
}

func of11Wildcards(w Wildcards) uint32 {
	var v uint32 = 0
	for _, b := range of11Bits {
		if w.Has(b.flag) {
			v = v | b.bit
		}
	}

	return v
}

func parseOF11Wildcards(v uint32) Wildcards {
	var w Wildcards
	for _, b := range of11Bits {
		if v&b.bit != 0 {
			w.Set(b.flag)
		}
	}

	return w
}
