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
	"github.com/google/gopacket/layers"
)

// EthernetTypePBB is the ethertype of 802.1ah provider backbone bridging.
const EthernetTypePBB layers.EthernetType = 0x88e7

type fieldSet struct {
	basic map[FieldType]Field
	other map[OxmType]Field
}

func newFieldSet() *fieldSet {
	return &fieldSet{
		basic: make(map[FieldType]Field),
		other: make(map[OxmType]Field),
	}
}

// insert returns false if a field of the same kind is already in the set.
func (r *fieldSet) insert(f Field) bool {
	h := f.Header()
	if h.Class == ClassBasic {
		if _, ok := r.basic[h.Type]; ok {
			return false
		}
		r.basic[h.Type] = f
		return true
	}

	if _, ok := r.other[h.OxmType()]; ok {
		return false
	}
	r.other[h.OxmType()] = f

	return true
}

func (r *fieldSet) ethType() (layers.EthernetType, bool) {
	f, ok := r.basic[OFPXMT_OFB_ETH_TYPE].(EthTypeField)
	return f.Value, ok
}

func (r *fieldSet) ipProto() (layers.IPProtocol, bool) {
	f, ok := r.basic[OFPXMT_OFB_IP_PROTO].(IPProtoField)
	return f.Value, ok
}

func (r *fieldSet) icmpv6Type() (uint8, bool) {
	f, ok := r.basic[OFPXMT_OFB_ICMPV6_TYPE].(ICMPTypeField)
	return f.Value, ok
}

type prerequisite struct {
	reason string
	check  func(s *fieldSet) bool
}

func ethTypeIs(reason string, types ...layers.EthernetType) prerequisite {
	return prerequisite{
		reason: reason,
		check: func(s *fieldSet) bool {
			v, ok := s.ethType()
			if !ok {
				return false
			}
			for _, t := range types {
				if v == t {
					return true
				}
			}
			return false
		},
	}
}

func ipProtoIs(reason string, proto layers.IPProtocol) prerequisite {
	return prerequisite{
		reason: reason,
		check: func(s *fieldSet) bool {
			v, ok := s.ipProto()
			return ok && v == proto
		},
	}
}

func icmpv6TypeIs(reason string, types ...uint8) prerequisite {
	return prerequisite{
		reason: reason,
		check: func(s *fieldSet) bool {
			v, ok := s.icmpv6Type()
			if !ok {
				return false
			}
			for _, t := range types {
				if v == t {
					return true
				}
			}
			return false
		},
	}
}

var (
	isIP       = ethTypeIs("eth_type=0x0800 or eth_type=0x86dd", layers.EthernetTypeIPv4, layers.EthernetTypeIPv6)
	isIPv4     = ethTypeIs("eth_type=0x0800", layers.EthernetTypeIPv4)
	isIPv6     = ethTypeIs("eth_type=0x86dd", layers.EthernetTypeIPv6)
	isARP      = ethTypeIs("eth_type=0x0806", layers.EthernetTypeARP)
	isMPLS     = ethTypeIs("eth_type=0x8847 or eth_type=0x8848", layers.EthernetTypeMPLSUnicast, layers.EthernetTypeMPLSMulticast)
	isPBB      = ethTypeIs("eth_type=0x88e7", EthernetTypePBB)
	isTCP      = ipProtoIs("ip_proto=6", layers.IPProtocolTCP)
	isUDP      = ipProtoIs("ip_proto=17", layers.IPProtocolUDP)
	isSCTP     = ipProtoIs("ip_proto=132", layers.IPProtocolSCTP)
	isICMPv4   = ipProtoIs("ip_proto=1", layers.IPProtocolICMPv4)
	isICMPv6   = ipProtoIs("ip_proto=58", layers.IPProtocolICMPv6)
	isNDTarget = icmpv6TypeIs("icmpv6_type=135 or icmpv6_type=136", layers.ICMPv6TypeNeighborSolicitation, layers.ICMPv6TypeNeighborAdvertisement)
	isNDSLL    = icmpv6TypeIs("icmpv6_type=135", layers.ICMPv6TypeNeighborSolicitation)
	isNDTLL    = icmpv6TypeIs("icmpv6_type=136", layers.ICMPv6TypeNeighborAdvertisement)
)

// prerequisites lists the fields that may only follow a particular earlier
// field. Fields not listed have none.
var prerequisites = map[FieldType]prerequisite{
	OFPXMT_OFB_IN_PHY_PORT: {
		reason: "in_port",
		check: func(s *fieldSet) bool {
			_, ok := s.basic[OFPXMT_OFB_IN_PORT]
			return ok
		},
	},
	OFPXMT_OFB_VLAN_PCP: {
		reason: "vlan_vid other than none",
		check: func(s *fieldSet) bool {
			f, ok := s.basic[OFPXMT_OFB_VLAN_VID].(VLANField)
			return ok && f.State != VLANNone
		},
	},
	OFPXMT_OFB_IP_DSCP:        isIP,
	OFPXMT_OFB_IP_ECN:         isIP,
	OFPXMT_OFB_IP_PROTO:       isIP,
	OFPXMT_OFB_IPV4_SRC:       isIPv4,
	OFPXMT_OFB_IPV4_DST:       isIPv4,
	OFPXMT_OFB_TCP_SRC:        isTCP,
	OFPXMT_OFB_TCP_DST:        isTCP,
	OFPXMT_OFB_UDP_SRC:        isUDP,
	OFPXMT_OFB_UDP_DST:        isUDP,
	OFPXMT_OFB_SCTP_SRC:       isSCTP,
	OFPXMT_OFB_SCTP_DST:       isSCTP,
	OFPXMT_OFB_ICMPV4_TYPE:    isICMPv4,
	OFPXMT_OFB_ICMPV4_CODE:    isICMPv4,
	OFPXMT_OFB_ARP_OP:         isARP,
	OFPXMT_OFB_ARP_SPA:        isARP,
	OFPXMT_OFB_ARP_TPA:        isARP,
	OFPXMT_OFB_ARP_SHA:        isARP,
	OFPXMT_OFB_ARP_THA:        isARP,
	OFPXMT_OFB_IPV6_SRC:       isIPv6,
	OFPXMT_OFB_IPV6_DST:       isIPv6,
	OFPXMT_OFB_IPV6_FLABEL:    isIPv6,
	OFPXMT_OFB_ICMPV6_TYPE:    isICMPv6,
	OFPXMT_OFB_ICMPV6_CODE:    isICMPv6,
	OFPXMT_OFB_IPV6_ND_TARGET: isNDTarget,
	OFPXMT_OFB_IPV6_ND_SLL:    isNDSLL,
	OFPXMT_OFB_IPV6_ND_TLL:    isNDTLL,
	OFPXMT_OFB_MPLS_LABEL:     isMPLS,
	OFPXMT_OFB_MPLS_TC:        isMPLS,
	OFPXMT_OFB_MPLS_BOS:       isMPLS,
	OFPXMT_OFB_PBB_ISID:       isPBB,
	OFPXMT_OFB_IPV6_EXTHDR:    isIPv6,
}

// Validate checks fields in order. Each field must be unique and its
// prerequisite must be satisfied by the fields preceding it. Every problem is
// reported in a single *ValidationError of kind ErrPrerequisitesNotMet whose
// Violations carry the kind of each problem.
func Validate(fields []Field) error {
	set := newFieldSet()
	var violations []Violation

	for _, f := range fields {
		h := f.Header()
		if !set.insert(f) {
			violations = append(violations, Violation{Kind: ErrDuplicate, Header: h})
			continue
		}
		if h.Class != ClassBasic {
			continue
		}
		p, ok := prerequisites[h.Type]
		if !ok || p.check(set) {
			continue
		}
		violations = append(violations, Violation{Kind: ErrPrerequisitesNotMet, Header: h, Reason: "requires " + p.reason})
	}
	if len(violations) == 0 {
		return nil
	}

	return &ValidationError{Kind: ErrPrerequisitesNotMet, Field: violations[0].Header.Name(), Violations: violations}
}
